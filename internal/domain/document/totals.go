package document

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tienda-pos/backoffice-api/internal/domain"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
)

// TaxRate IVA fijo aplicado sobre el subtotal.
var TaxRate = decimal.RequireFromString("0.07")

// Totals resultado del cálculo de un documento.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// CalculateTotals suma el Total de cada línea (no recalcula cantidad × precio),
// aplica el IVA redondeado a 2 decimales y devuelve subtotal + impuesto.
func CalculateTotals(items []entity.LineItem) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total)
	}
	// Round es mitad-alejada-de-cero; con montos no negativos equivale a mitad-arriba.
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal: subtotal.Round(2),
		Tax:      tax,
		Total:    subtotal.Add(tax).Round(2),
	}
}

// NormalizeItems valida cantidades y precios y recalcula el total de cada línea
// en el servidor. Devuelve una copia; no modifica el slice recibido.
func NormalizeItems(items []entity.LineItem) ([]entity.LineItem, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: el documento requiere al menos una línea", domain.ErrInvalidInput)
	}
	out := make([]entity.LineItem, len(items))
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: línea %d: cantidad debe ser positiva", domain.ErrInvalidInput, i+1)
		}
		if it.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: línea %d: precio unitario negativo", domain.ErrInvalidInput, i+1)
		}
		it.Total = it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)).Round(2)
		out[i] = it
	}
	return out, nil
}
