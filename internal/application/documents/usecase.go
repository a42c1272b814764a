// Package documents orquesta cotizaciones, notas de entrega y recibos:
// numeración dentro de transacción, totales, cambios de estado, conversión
// a recibo y el resumen del dashboard.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tienda-pos/backoffice-api/internal/application/dto"
	"github.com/tienda-pos/backoffice-api/internal/domain"
	"github.com/tienda-pos/backoffice-api/internal/domain/document"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
	"github.com/tienda-pos/backoffice-api/internal/domain/repository"
)

// UseCase casos de uso de documentos.
type UseCase struct {
	docRepo      repository.DocumentRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	txRunner     TxRunner
	cache        StatsCache
	metrics      Metrics
	now          func() time.Time
}

// NewUseCase construye el caso de uso. cache y metrics pueden ser nil.
func NewUseCase(
	docRepo repository.DocumentRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	txRunner TxRunner,
	cache StatsCache,
	metrics Metrics,
) *UseCase {
	if cache == nil {
		cache = noopCache{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &UseCase{
		docRepo:      docRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		txRunner:     txRunner,
		cache:        cache,
		metrics:      metrics,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// List lista documentos. Tipos o estados desconocidos en el filtro se ignoran.
func (uc *UseCase) List(ctx context.Context, in dto.DocumentFilterRequest) ([]dto.DocumentResponse, error) {
	docs, err := uc.docRepo.List(ctx, toFilter(in))
	if err != nil {
		return nil, err
	}
	out := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, *ToDocumentResponse(d))
	}
	return out, nil
}

// Get obtiene un documento. Devuelve ErrNotFound si no existe.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToDocumentResponse(doc), nil
}

// Create valida, resuelve nombres de cliente y productos, calcula totales y
// numera e inserta el documento en una sola transacción.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	docType := entity.DocType(in.DocType)
	if !docType.IsValid() {
		return nil, fmt.Errorf("%w: tipo de documento %q", domain.ErrInvalidInput, in.DocType)
	}
	status, err := document.ValidateInitialStatus(entity.DocStatus(in.Status))
	if err != nil {
		return nil, err
	}
	items, err := uc.resolveItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	customerName, err := uc.resolveCustomerName(ctx, in.CustomerID, in.CustomerName)
	if err != nil {
		return nil, err
	}

	totals := document.CalculateTotals(items)
	doc := &entity.Document{
		DocType:      docType,
		CustomerID:   in.CustomerID,
		CustomerName: customerName,
		Items:        items,
		Subtotal:     totals.Subtotal,
		Tax:          totals.Tax,
		Total:        totals.Total,
		Status:       status,
		Notes:        in.Notes,
		CreatedBy:    userID,
	}

	err = uc.retryOnNumberTaken(func() error {
		return uc.txRunner.RunDocuments(ctx, func(repo repository.DocumentRepository) error {
			doc.ID = uuid.New().String()
			doc.CreatedAt = uc.now()
			if err := assignNumber(ctx, repo, doc); err != nil {
				return err
			}
			return repo.Create(ctx, doc)
		})
	})
	if err != nil {
		return nil, err
	}
	uc.written(ctx, "create", doc.DocType)
	return ToDocumentResponse(doc), nil
}

// Update aplica una actualización parcial. Solo recalcula totales si llegan items;
// los cambios de estado pasan por las transiciones permitidas.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	var items []entity.LineItem
	if in.Items != nil {
		var err error
		if items, err = uc.resolveItems(ctx, *in.Items); err != nil {
			return nil, err
		}
	}
	var customerName *string
	if in.CustomerID != nil && *in.CustomerID != "" {
		given := ""
		if in.CustomerName != nil {
			given = *in.CustomerName
		}
		name, err := uc.resolveCustomerName(ctx, *in.CustomerID, given)
		if err != nil {
			return nil, err
		}
		customerName = &name
	} else if in.CustomerName != nil {
		customerName = in.CustomerName
	}

	var doc *entity.Document
	err := uc.txRunner.RunDocuments(ctx, func(repo repository.DocumentRepository) error {
		current, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if in.Status != nil {
			next := entity.DocStatus(*in.Status)
			if err := document.ValidateStatusChange(current.Status, next); err != nil {
				return err
			}
			current.Status = next
		}
		if in.Items != nil {
			totals := document.CalculateTotals(items)
			current.Items = items
			current.Subtotal = totals.Subtotal
			current.Tax = totals.Tax
			current.Total = totals.Total
		}
		if in.CustomerID != nil {
			current.CustomerID = *in.CustomerID
		}
		if customerName != nil {
			current.CustomerName = *customerName
		}
		if in.Notes != nil {
			current.Notes = *in.Notes
		}
		if err := repo.Update(ctx, current); err != nil {
			return err
		}
		doc = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.written(ctx, "update", doc.DocType)
	return ToDocumentResponse(doc), nil
}

// Delete elimina un documento. Devuelve ErrNotFound si no existe.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	doc, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.docRepo.Delete(ctx, id); err != nil {
		return err
	}
	uc.written(ctx, "delete", doc.DocType)
	return nil
}

// Convert convierte una cotización en recibo. Lectura con bloqueo de la
// cotización, alta del recibo y marca de la cotización como convertida van en
// una sola transacción: o se hace todo o nada.
func (uc *UseCase) Convert(ctx context.Context, userID, id string) (*dto.DocumentResponse, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	var receipt *entity.Document
	err := uc.retryOnNumberTaken(func() error {
		return uc.txRunner.RunDocuments(ctx, func(repo repository.DocumentRepository) error {
			source, err := repo.GetByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if err := document.CheckConvertible(source); err != nil {
				return err
			}
			r := document.NewReceiptFrom(source, uuid.New().String(), "", userID, uc.now())
			if err := assignNumber(ctx, repo, r); err != nil {
				return err
			}
			if err := repo.Create(ctx, r); err != nil {
				return err
			}
			if err := repo.UpdateStatus(ctx, source.ID, entity.DocStatusConverted); err != nil {
				return err
			}
			receipt = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.written(ctx, "convert", receipt.DocType)
	return ToDocumentResponse(receipt), nil
}

// Stats devuelve el resumen del dashboard, desde caché si está disponible.
func (uc *UseCase) Stats(ctx context.Context) (*dto.DocumentStatsResponse, error) {
	cached, gen, ok := uc.cache.Get(ctx)
	if ok {
		resp := ToStatsResponse(cached)
		return &resp, nil
	}
	s, err := uc.docRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	uc.cache.Set(ctx, gen, s)
	resp := ToStatsResponse(s)
	return &resp, nil
}

func (uc *UseCase) load(ctx context.Context, id string) (*entity.Document, error) {
	return loadDocument(ctx, uc.docRepo, id)
}

func (uc *UseCase) written(ctx context.Context, op string, t entity.DocType) {
	uc.cache.Invalidate(ctx)
	uc.metrics.DocumentWritten(op, t)
}

// retryOnNumberTaken reintenta una vez cuando otro request tomó el mismo número.
// Si vuelve a chocar el error sube tal cual y termina en 500.
func (uc *UseCase) retryOnNumberTaken(fn func() error) error {
	err := fn()
	if errors.Is(err, domain.ErrDocNumberTaken) {
		uc.metrics.NumberConflict()
		err = fn()
	}
	return err
}

// assignNumber toma el lock de numeración del tipo y año y asigna el siguiente consecutivo.
func assignNumber(ctx context.Context, repo repository.DocumentRepository, doc *entity.Document) error {
	year := doc.CreatedAt.Year()
	if err := repo.LockSequence(ctx, doc.DocType, year); err != nil {
		return err
	}
	count, maxSeq, err := repo.SequenceState(ctx, doc.DocType, year)
	if err != nil {
		return err
	}
	doc.DocNumber = document.FormatNumber(doc.DocType, year, document.NextSequence(count, maxSeq))
	return nil
}

// resolveCustomerName devuelve el nombre a guardar: el recibido o, si falta, el del
// cliente registrado en ese momento. Un customerID no vacío siempre debe existir.
func (uc *UseCase) resolveCustomerName(ctx context.Context, customerID, name string) (string, error) {
	if customerID == "" {
		return name, nil
	}
	if !validID(customerID) {
		return "", fmt.Errorf("%w: customerId inválido", domain.ErrInvalidInput)
	}
	c, err := uc.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", fmt.Errorf("%w: el cliente no existe", domain.ErrInvalidInput)
	}
	if name != "" {
		return name, nil
	}
	return c.Name, nil
}

// resolveItems convierte las líneas recibidas, completa productName desde el
// catálogo cuando falta y recalcula los totales de línea.
func (uc *UseCase) resolveItems(ctx context.Context, in []dto.LineItemRequest) ([]entity.LineItem, error) {
	items := make([]entity.LineItem, 0, len(in))
	for i, it := range in {
		name := strings.TrimSpace(it.ProductName)
		if name == "" {
			if it.ProductID == "" || !validID(it.ProductID) {
				return nil, fmt.Errorf("%w: línea %d sin producto", domain.ErrInvalidInput, i+1)
			}
			p, err := uc.productRepo.GetByID(ctx, it.ProductID)
			if err != nil {
				return nil, err
			}
			if p == nil {
				return nil, fmt.Errorf("%w: línea %d: el producto no existe", domain.ErrInvalidInput, i+1)
			}
			name = p.Name
		}
		items = append(items, entity.LineItem{
			ProductID:   it.ProductID,
			ProductName: name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return document.NormalizeItems(items)
}

func toFilter(in dto.DocumentFilterRequest) entity.DocumentFilter {
	f := entity.DocumentFilter{Search: strings.TrimSpace(in.Search)}
	if t := entity.DocType(in.Type); t.IsValid() {
		f.Type = t
	}
	if s := entity.DocStatus(in.Status); s.IsValid() {
		f.Status = s
	}
	return f
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
