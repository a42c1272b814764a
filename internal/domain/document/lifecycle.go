package document

import (
	"fmt"
	"time"

	"github.com/tienda-pos/backoffice-api/internal/domain"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
)

// transitions estados destino permitidos por estado origen (vía actualización).
// converted solo se alcanza con Convert; converted y cancelled son terminales.
var transitions = map[entity.DocStatus][]entity.DocStatus{
	entity.DocStatusDraft:     {entity.DocStatusConfirmed, entity.DocStatusCancelled},
	entity.DocStatusConfirmed: {entity.DocStatusCancelled},
}

// CanTransition indica si un documento puede pasar de from a to mediante una actualización.
// Mantener el mismo estado siempre es válido.
func CanTransition(from, to entity.DocStatus) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateInitialStatus valida el estado con el que se crea un documento.
// Vacío equivale a draft.
func ValidateInitialStatus(s entity.DocStatus) (entity.DocStatus, error) {
	switch s {
	case "":
		return entity.DocStatusDraft, nil
	case entity.DocStatusDraft, entity.DocStatusConfirmed:
		return s, nil
	}
	return "", fmt.Errorf("%w: estado inicial %q no permitido", domain.ErrInvalidInput, s)
}

// ValidateStatusChange aplica CanTransition y traduce el rechazo a error de dominio.
func ValidateStatusChange(from, to entity.DocStatus) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: no se puede pasar de %s a %s", domain.ErrInvalidOperation, from, to)
	}
	return nil
}

// CheckConvertible verifica que el documento sea una cotización aún convertible.
func CheckConvertible(doc *entity.Document) error {
	if doc == nil {
		return domain.ErrNotFound
	}
	if doc.DocType != entity.DocTypeQuotation {
		return fmt.Errorf("%w: solo se pueden convertir cotizaciones", domain.ErrInvalidOperation)
	}
	switch doc.Status {
	case entity.DocStatusConverted:
		return fmt.Errorf("%w: la cotización ya fue convertida", domain.ErrInvalidOperation)
	case entity.DocStatusCancelled:
		return fmt.Errorf("%w: la cotización está anulada", domain.ErrInvalidOperation)
	}
	return nil
}

// NewReceiptFrom construye el recibo resultante de convertir la cotización source.
// Copia cliente, líneas, totales y notas tal cual; el número lo asigna el caller.
func NewReceiptFrom(source *entity.Document, id, number, userID string, now time.Time) *entity.Document {
	items := make([]entity.LineItem, len(source.Items))
	copy(items, source.Items)
	return &entity.Document{
		ID:            id,
		DocNumber:     number,
		DocType:       entity.DocTypeReceipt,
		CustomerID:    source.CustomerID,
		CustomerName:  source.CustomerName,
		Items:         items,
		Subtotal:      source.Subtotal,
		Tax:           source.Tax,
		Total:         source.Total,
		Status:        entity.DocStatusConfirmed,
		Notes:         source.Notes,
		ConvertedFrom: source.ID,
		CreatedBy:     userID,
		CreatedAt:     now,
	}
}
