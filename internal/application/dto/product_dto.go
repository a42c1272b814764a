package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	Name  string           `json:"name" validate:"required,min=1,max=200"`
	SKU   string           `json:"sku" validate:"omitempty,max=50"`
	Price *decimal.Decimal `json:"price" validate:"required"`
	Stock int64            `json:"stock" validate:"gte=0"`
}

// UpdateProductRequest body para PATCH /api/products/:id (parcial).
type UpdateProductRequest struct {
	Name  *string          `json:"name" validate:"omitempty,min=1,max=200"`
	SKU   *string          `json:"sku" validate:"omitempty,max=50"`
	Price *decimal.Decimal `json:"price"`
	Stock *int64           `json:"stock" validate:"omitempty,gte=0"`
}

// ProductResponse producto en respuestas. Price como string con dos decimales.
type ProductResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SKU       *string   `json:"sku"`
	Price     string    `json:"price"`
	Stock     int64     `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductEnvelope {product}.
type ProductEnvelope struct {
	Product *ProductResponse `json:"product"`
}

// ProductListEnvelope {products}.
type ProductListEnvelope struct {
	Products []ProductResponse `json:"products"`
}
