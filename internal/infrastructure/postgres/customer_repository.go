package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tienda-pos/backoffice-api/internal/domain"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
	"github.com/tienda-pos/backoffice-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	query := `
		INSERT INTO customers (id, name, phone, email, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		customer.ID, customer.Name, nullIfEmpty(customer.Phone), nullIfEmpty(customer.Email), customer.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	query := `SELECT id, name, phone, email, created_at FROM customers WHERE id = $1`
	c, err := scanCustomer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// List lista clientes por fecha de alta, filtrando por nombre/teléfono/email.
func (r *CustomerRepo) List(ctx context.Context, search string) ([]*entity.Customer, error) {
	query := `SELECT id, name, phone, email, created_at FROM customers`
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		query += ` WHERE name ILIKE $1 OR phone ILIKE $1 OR email ILIKE $1`
		args = append(args, likePattern(s))
	}
	query += ` ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update actualiza un cliente. Devuelve ErrNotFound si no existe.
func (r *CustomerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	query := `UPDATE customers SET name = $2, phone = $3, email = $4 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		customer.ID, customer.Name, nullIfEmpty(customer.Phone), nullIfEmpty(customer.Email),
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un cliente por ID. Los documentos conservan la copia del nombre.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	var phone, email *string
	if err := row.Scan(&c.ID, &c.Name, &phone, &email, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Phone = derefStr(phone)
	c.Email = derefStr(email)
	return &c, nil
}
