package dto

import "time"

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Phone string `json:"phone" validate:"omitempty,max=30"`
	Email string `json:"email" validate:"omitempty,email,max=100"`
}

// UpdateCustomerRequest body para PATCH /api/customers/:id.
type UpdateCustomerRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=200"`
	Phone *string `json:"phone" validate:"omitempty,max=30"`
	Email *string `json:"email" validate:"omitempty,max=100"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// CustomerEnvelope {customer}.
type CustomerEnvelope struct {
	Customer *CustomerResponse `json:"customer"`
}

// CustomerListEnvelope {customers}.
type CustomerListEnvelope struct {
	Customers []CustomerResponse `json:"customers"`
}
