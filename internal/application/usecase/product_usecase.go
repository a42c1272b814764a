package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tienda-pos/backoffice-api/internal/application/dto"
	"github.com/tienda-pos/backoffice-api/internal/domain"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
	"github.com/tienda-pos/backoffice-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// List lista productos, opcionalmente filtrando por nombre o SKU.
func (uc *ProductUseCase) List(ctx context.Context, search string) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx, search)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProductResponse(p))
	}
	return out, nil
}

// Create crea un producto. Nombre y precio son obligatorios; el stock inicia en lo enviado o 0.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price == nil {
		return nil, fmt.Errorf("%w: nombre y precio son obligatorios", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() || in.Stock < 0 {
		return nil, fmt.Errorf("%w: precio y stock no pueden ser negativos", domain.ErrInvalidInput)
	}
	p := &entity.Product{
		ID:        uuid.New().String(),
		Name:      name,
		SKU:       strings.TrimSpace(in.SKU),
		Price:     in.Price.Round(2),
		Stock:     in.Stock,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// Update actualiza solo los campos enviados. Devuelve ErrNotFound si no existe.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: el nombre del producto es obligatorio", domain.ErrInvalidInput)
		}
		p.Name = name
	}
	if in.SKU != nil {
		p.SKU = strings.TrimSpace(*in.SKU)
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
		}
		p.Price = in.Price.Round(2)
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, fmt.Errorf("%w: stock negativo", domain.ErrInvalidInput)
		}
		p.Stock = *in.Stock
	}
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// Delete elimina un producto. Las líneas de documentos ya emitidos no cambian.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		SKU:       optional(p.SKU),
		Price:     p.Price.StringFixed(2),
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt,
	}
}
