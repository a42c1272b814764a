package repository

import (
	"context"

	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
)

// DocumentRepository define el puerto de persistencia para documentos.
// GetByID devuelve (nil, nil) si no existe, igual que el resto de repositorios.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	// GetByIDForUpdate bloquea la fila hasta el fin de la transacción (solo dentro de tx).
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Document, error)
	List(ctx context.Context, filter entity.DocumentFilter) ([]*entity.Document, error)
	// Update persiste items, totales, cliente, notas y estado. Devuelve ErrNotFound si no existe.
	Update(ctx context.Context, doc *entity.Document) error
	UpdateStatus(ctx context.Context, id string, status entity.DocStatus) error
	// Delete devuelve ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
	// SequenceState devuelve cuántos documentos del tipo se crearon en el año y el
	// mayor consecutivo ya usado con el prefijo de ese tipo y año.
	SequenceState(ctx context.Context, docType entity.DocType, year int) (count, maxSeq int64, err error)
	// LockSequence serializa la numeración del tipo y año hasta el fin de la transacción.
	LockSequence(ctx context.Context, docType entity.DocType, year int) error
	Stats(ctx context.Context) (*entity.DocumentStats, error)
}
