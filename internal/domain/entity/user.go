package entity

import "time"

// Roles válidos para User.
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

// IsValidRole indica si el rol existe.
func IsValidRole(role string) bool {
	return role == RoleOwner || role == RoleAdmin
}

// User representa un usuario del back office.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	FullName     string
	Role         string // owner, admin
	CreatedAt    time.Time
}
