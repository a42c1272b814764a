package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tienda-pos/backoffice-api/internal/domain"
	"github.com/tienda-pos/backoffice-api/internal/domain/document"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
	"github.com/tienda-pos/backoffice-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

const documentColumns = `
	id, doc_number, doc_type, customer_id, customer_name, items,
	subtotal, tax, total, status, notes, converted_from, created_by, created_at`

// DocumentRepo implementación de DocumentRepository (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Create persiste el documento con sus líneas (JSONB).
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	items, err := json.Marshal(doc.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	query := `
		INSERT INTO documents (id, doc_number, doc_type, customer_id, customer_name, items,
		                       subtotal, tax, total, status, notes, converted_from, created_by, created_at)
		VALUES ($1, $2, $3::doc_type, $4, $5, $6, $7, $8, $9, $10::doc_status, $11, $12, $13, $14)`
	_, err = r.q.Exec(ctx, query,
		doc.ID, doc.DocNumber, string(doc.DocType),
		nullIfEmpty(doc.CustomerID), nullIfEmpty(doc.CustomerName), items,
		doc.Subtotal, doc.Tax, doc.Total, string(doc.Status),
		nullIfEmpty(doc.Notes), nullIfEmpty(doc.ConvertedFrom), nullIfEmpty(doc.CreatedBy),
		doc.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDocNumberTaken, doc.DocNumber)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID obtiene un documento por ID.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene el documento y bloquea la fila (SELECT ... FOR UPDATE).
func (r *DocumentRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.getOne(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1 FOR UPDATE`, id)
}

func (r *DocumentRepo) getOne(ctx context.Context, query, id string) (*entity.Document, error) {
	doc, err := scanDocument(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List lista documentos aplicando filtros opcionales, más recientes primero.
func (r *DocumentRepo) List(ctx context.Context, filter entity.DocumentFilter) ([]*entity.Document, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		conds = append(conds, fmt.Sprintf("doc_type = $%d::doc_type", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d::doc_status", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, likePattern(s))
		conds = append(conds, fmt.Sprintf("(doc_number ILIKE $%d OR customer_name ILIKE $%d)", len(args), len(args)))
	}
	query := `SELECT ` + documentColumns + ` FROM documents`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, doc)
	}
	return list, rows.Err()
}

// Update persiste los campos editables del documento. doc_number, doc_type,
// converted_from, created_by y created_at no se modifican nunca.
func (r *DocumentRepo) Update(ctx context.Context, doc *entity.Document) error {
	items, err := json.Marshal(doc.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	query := `
		UPDATE documents
		SET customer_id   = $2,
		    customer_name = $3,
		    items         = $4,
		    subtotal      = $5,
		    tax           = $6,
		    total         = $7,
		    status        = $8::doc_status,
		    notes         = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		doc.ID, nullIfEmpty(doc.CustomerID), nullIfEmpty(doc.CustomerName), items,
		doc.Subtotal, doc.Tax, doc.Total, string(doc.Status), nullIfEmpty(doc.Notes),
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus cambia solo el estado.
func (r *DocumentRepo) UpdateStatus(ctx context.Context, id string, status entity.DocStatus) error {
	tag, err := r.q.Exec(ctx, `UPDATE documents SET status = $2::doc_status WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un documento por ID.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SequenceState cuenta los documentos del tipo creados en el año y busca el mayor
// consecutivo usado bajo el prefijo {PREFIX}-{YEAR}-.
func (r *DocumentRepo) SequenceState(ctx context.Context, docType entity.DocType, year int) (int64, int64, error) {
	const query = `
		SELECT
		    COUNT(*) FILTER (WHERE EXTRACT(YEAR FROM created_at AT TIME ZONE 'UTC') = $2::int),
		    COALESCE(MAX(substring(doc_number FROM '([0-9]+)$')::BIGINT) FILTER (WHERE doc_number LIKE $3), 0)
		FROM documents
		WHERE doc_type = $1::doc_type`
	var count, maxSeq int64
	err := r.q.QueryRow(ctx, query, string(docType), year, document.NumberPattern(docType, year)).Scan(&count, &maxSeq)
	if err != nil {
		return 0, 0, fmt.Errorf("sequence state: %w", err)
	}
	return count, maxSeq, nil
}

// LockSequence toma un advisory lock transaccional por tipo y año.
// Fuera de una transacción el lock se libera al terminar la sentencia y no protege nada.
func (r *DocumentRepo) LockSequence(ctx context.Context, docType entity.DocType, year int) error {
	key := fmt.Sprintf("doc_number:%s-%d", document.Prefix(docType), year)
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("lock sequence: %w", err)
	}
	return nil
}

// Stats agrega ingresos de recibos confirmados y conteos por tipo en una sola pasada.
func (r *DocumentRepo) Stats(ctx context.Context) (*entity.DocumentStats, error) {
	const query = `
		SELECT
		    COALESCE(SUM(total) FILTER (WHERE doc_type = 'receipt' AND status = 'confirmed'), 0),
		    COUNT(*) FILTER (WHERE doc_type = 'quotation'),
		    COUNT(*) FILTER (WHERE doc_type = 'voi'),
		    COUNT(*) FILTER (WHERE doc_type = 'receipt')
		FROM documents`
	var s entity.DocumentStats
	if err := r.q.QueryRow(ctx, query).Scan(&s.TotalRevenue, &s.QuotationCount, &s.VOICount, &s.ReceiptCount); err != nil {
		return nil, fmt.Errorf("document stats: %w", err)
	}
	return &s, nil
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var (
		d                                                       entity.Document
		docType, status                                         string
		customerID, customerName, notes, convertedFrom, creator *string
		items                                                   []byte
	)
	err := row.Scan(
		&d.ID, &d.DocNumber, &docType, &customerID, &customerName, &items,
		&d.Subtotal, &d.Tax, &d.Total, &status, &notes, &convertedFrom, &creator, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.DocType = entity.DocType(docType)
	d.Status = entity.DocStatus(status)
	d.CustomerID = derefStr(customerID)
	d.CustomerName = derefStr(customerName)
	d.Notes = derefStr(notes)
	d.ConvertedFrom = derefStr(convertedFrom)
	d.CreatedBy = derefStr(creator)
	d.Items = []entity.LineItem{}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &d.Items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
	}
	return &d, nil
}
