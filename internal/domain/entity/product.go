package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
type Product struct {
	ID        string
	Name      string
	SKU       string
	Price     decimal.Decimal // precio de venta
	Stock     int64
	CreatedAt time.Time
}
