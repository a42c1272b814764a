// Package memorytest provee repositorios en memoria para los tests de casos de
// uso y handlers. No se usa en los binarios. RunDocuments emula una transacción
// con snapshot y rollback de la tabla de documentos.
package memorytest

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tienda-pos/backoffice-api/internal/application/documents"
	"github.com/tienda-pos/backoffice-api/internal/domain"
	"github.com/tienda-pos/backoffice-api/internal/domain/document"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
	"github.com/tienda-pos/backoffice-api/internal/domain/repository"
)

type storedDoc struct {
	doc *entity.Document
	seq int
}

var _ documents.TxRunner = (*Store)(nil)

// Store tablas en memoria.
type Store struct {
	mu        sync.Mutex
	txMu      sync.Mutex
	seq       int
	docs      map[string]storedDoc
	customers map[string]*entity.Customer
	products  map[string]*entity.Product
	users     map[string]*entity.User

	// FailDocCreates cantidad de altas de documento que fallan con
	// ErrDocNumberTaken antes de aceptar (simula una carrera de numeración).
	FailDocCreates int
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		docs:      make(map[string]storedDoc),
		customers: make(map[string]*entity.Customer),
		products:  make(map[string]*entity.Product),
		users:     make(map[string]*entity.User),
	}
}

// Documents repositorio de documentos.
func (s *Store) Documents() repository.DocumentRepository { return (*DocumentRepo)(s) }

// Customers repositorio de clientes.
func (s *Store) Customers() repository.CustomerRepository { return (*CustomerRepo)(s) }

// Products repositorio de productos.
func (s *Store) Products() repository.ProductRepository { return (*ProductRepo)(s) }

// Users repositorio de usuarios.
func (s *Store) Users() repository.UserRepository { return (*UserRepo)(s) }

// DocumentCount cantidad de documentos guardados.
func (s *Store) DocumentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// RunDocuments serializa las "transacciones" y restaura la tabla de documentos si fn falla.
func (s *Store) RunDocuments(ctx context.Context, fn func(docRepo repository.DocumentRepository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := make(map[string]storedDoc, len(s.docs))
	for k, v := range s.docs {
		snapshot[k] = storedDoc{doc: cloneDoc(v.doc), seq: v.seq}
	}
	s.mu.Unlock()

	if err := fn(s.Documents()); err != nil {
		s.mu.Lock()
		s.docs = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// DocumentRepo vista de documentos del store.
type DocumentRepo Store

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

func (r *DocumentRepo) store() *Store { return (*Store)(r) }

// Create inserta respetando la unicidad de doc_number.
func (r *DocumentRepo) Create(_ context.Context, doc *entity.Document) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDocCreates > 0 {
		s.FailDocCreates--
		return domain.ErrDocNumberTaken
	}
	for _, d := range s.docs {
		if d.doc.DocNumber == doc.DocNumber {
			return domain.ErrDocNumberTaken
		}
	}
	s.seq++
	s.docs[doc.ID] = storedDoc{doc: cloneDoc(doc), seq: s.seq}
	return nil
}

func (r *DocumentRepo) GetByID(_ context.Context, id string) (*entity.Document, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, nil
	}
	return cloneDoc(d.doc), nil
}

func (r *DocumentRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.GetByID(ctx, id)
}

// List aplica los mismos filtros que la consulta SQL, más recientes primero.
func (r *DocumentRepo) List(_ context.Context, f entity.DocumentFilter) ([]*entity.Document, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	search := strings.ToLower(f.Search)
	var rows []storedDoc
	for _, d := range s.docs {
		if f.Type != "" && d.doc.DocType != f.Type {
			continue
		}
		if f.Status != "" && d.doc.Status != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(d.doc.DocNumber), search) &&
			!strings.Contains(strings.ToLower(d.doc.CustomerName), search) {
			continue
		}
		rows = append(rows, d)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].doc.CreatedAt.Equal(rows[j].doc.CreatedAt) {
			return rows[i].doc.CreatedAt.After(rows[j].doc.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	out := make([]*entity.Document, 0, len(rows))
	for _, d := range rows {
		out = append(out, cloneDoc(d.doc))
	}
	return out, nil
}

func (r *DocumentRepo) Update(_ context.Context, doc *entity.Document) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.docs[doc.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := cloneDoc(cur.doc)
	next.CustomerID = doc.CustomerID
	next.CustomerName = doc.CustomerName
	next.Items = cloneDoc(doc).Items
	next.Subtotal = doc.Subtotal
	next.Tax = doc.Tax
	next.Total = doc.Total
	next.Status = doc.Status
	next.Notes = doc.Notes
	s.docs[doc.ID] = storedDoc{doc: next, seq: cur.seq}
	return nil
}

func (r *DocumentRepo) UpdateStatus(_ context.Context, id string, status entity.DocStatus) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	cur.doc.Status = status
	return nil
}

func (r *DocumentRepo) Delete(_ context.Context, id string) error {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.docs, id)
	for _, d := range s.docs {
		if d.doc.ConvertedFrom == id {
			d.doc.ConvertedFrom = ""
		}
	}
	return nil
}

func (r *DocumentRepo) SequenceState(_ context.Context, docType entity.DocType, year int) (int64, int64, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := strings.TrimSuffix(document.NumberPattern(docType, year), "%")
	var count, maxSeq int64
	for _, d := range s.docs {
		if d.doc.DocType != docType {
			continue
		}
		if d.doc.CreatedAt.UTC().Year() == year {
			count++
		}
		if rest, ok := strings.CutPrefix(d.doc.DocNumber, prefix); ok {
			if n, err := strconv.ParseInt(rest, 10, 64); err == nil && n > maxSeq {
				maxSeq = n
			}
		}
	}
	return count, maxSeq, nil
}

// LockSequence no hace nada: RunDocuments ya serializa.
func (r *DocumentRepo) LockSequence(context.Context, entity.DocType, int) error { return nil }

func (r *DocumentRepo) Stats(_ context.Context) (*entity.DocumentStats, error) {
	s := r.store()
	s.mu.Lock()
	defer s.mu.Unlock()
	var st entity.DocumentStats
	for _, d := range s.docs {
		switch d.doc.DocType {
		case entity.DocTypeQuotation:
			st.QuotationCount++
		case entity.DocTypeVOI:
			st.VOICount++
		case entity.DocTypeReceipt:
			st.ReceiptCount++
			if d.doc.Status == entity.DocStatusConfirmed {
				st.TotalRevenue = st.TotalRevenue.Add(d.doc.Total)
			}
		}
	}
	return &st, nil
}

func cloneDoc(d *entity.Document) *entity.Document {
	c := *d
	c.Items = append([]entity.LineItem(nil), d.Items...)
	if c.Items == nil {
		c.Items = []entity.LineItem{}
	}
	return &c
}
