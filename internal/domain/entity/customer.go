package entity

import "time"

// Customer representa un cliente del negocio.
type Customer struct {
	ID        string
	Name      string
	Phone     string // E.164 cuando se pudo normalizar
	Email     string
	CreatedAt time.Time
}
