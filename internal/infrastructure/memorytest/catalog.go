package memorytest

import (
	"context"
	"sort"
	"strings"

	"github.com/tienda-pos/backoffice-api/internal/domain"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
	"github.com/tienda-pos/backoffice-api/internal/domain/repository"
)

// CustomerRepo vista de clientes del store.
type CustomerRepo Store

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.customers[c.ID] = &cp
	return nil
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *CustomerRepo) List(_ context.Context, search string) ([]*entity.Customer, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(search))
	out := make([]*entity.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if q != "" && !containsAny(q, c.Name, c.Phone, c.Email) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *CustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[c.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *c
	s.customers[c.ID] = &cp
	return nil
}

func (r *CustomerRepo) Delete(_ context.Context, id string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.customers, id)
	for _, d := range s.docs {
		if d.doc.CustomerID == id {
			d.doc.CustomerID = ""
		}
	}
	return nil
}

// ProductRepo vista de productos del store.
type ProductRepo Store

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) List(_ context.Context, search string) ([]*entity.Product, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(search))
	out := make([]*entity.Product, 0, len(s.products))
	for _, p := range s.products {
		if q != "" && !containsAny(q, p.Name, p.SKU) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	s.products[p.ID] = &cp
	return nil
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

// UserRepo vista de usuarios del store.
type UserRepo Store

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return domain.ErrDuplicate
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) List(_ context.Context) ([]*entity.User, error) {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepo) UpdateRole(_ context.Context, id, role string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Role = role
	return nil
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
