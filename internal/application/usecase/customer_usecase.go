package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tienda-pos/backoffice-api/internal/application/dto"
	"github.com/tienda-pos/backoffice-api/internal/domain"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
	"github.com/tienda-pos/backoffice-api/internal/domain/repository"
	"github.com/tienda-pos/backoffice-api/pkg/phone"
)

// CustomerUseCase casos de uso CRUD para clientes. Los teléfonos se guardan en E.164.
type CustomerUseCase struct {
	repo        repository.CustomerRepository
	phoneRegion string
}

// NewCustomerUseCase construye el caso de uso con la región por defecto para teléfonos.
func NewCustomerUseCase(repo repository.CustomerRepository, phoneRegion string) *CustomerUseCase {
	return &CustomerUseCase{repo: repo, phoneRegion: phoneRegion}
}

// List lista clientes, opcionalmente filtrando por nombre, teléfono o email.
func (uc *CustomerUseCase) List(ctx context.Context, search string) ([]dto.CustomerResponse, error) {
	list, err := uc.repo.List(ctx, search)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCustomerResponse(c))
	}
	return out, nil
}

// Create crea un cliente. El nombre es obligatorio.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre del cliente es obligatorio", domain.ErrInvalidInput)
	}
	tel, err := uc.normalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}
	c := &entity.Customer{
		ID:        uuid.New().String(),
		Name:      name,
		Phone:     tel,
		Email:     strings.TrimSpace(in.Email),
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// Update actualiza los campos enviados. Devuelve ErrNotFound si no existe.
func (uc *CustomerUseCase) Update(ctx context.Context, id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: el nombre del cliente es obligatorio", domain.ErrInvalidInput)
		}
		c.Name = name
	}
	if in.Phone != nil {
		if c.Phone, err = uc.normalizePhone(*in.Phone); err != nil {
			return nil, err
		}
	}
	if in.Email != nil {
		c.Email = strings.TrimSpace(*in.Email)
	}
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toCustomerResponse(c), nil
}

// Delete elimina un cliente. Los documentos que lo referencian conservan el nombre copiado.
func (uc *CustomerUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *CustomerUseCase) normalizePhone(raw string) (string, error) {
	tel, err := phone.Normalize(raw, uc.phoneRegion)
	if errors.Is(err, phone.ErrInvalid) {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return tel, err
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     optional(c.Phone),
		Email:     optional(c.Email),
		CreatedAt: c.CreatedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
