package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tienda-pos/backoffice-api/internal/application/dto"
	"github.com/tienda-pos/backoffice-api/internal/application/usecase"
	"github.com/tienda-pos/backoffice-api/internal/domain"
	"github.com/tienda-pos/backoffice-api/internal/infrastructure/memorytest"
)

func ptr[T any](v T) *T { return &v }

func TestCustomer_CreateNormalizaTelefono(t *testing.T) {
	uc := usecase.NewCustomerUseCase(memorytest.NewStore().Customers(), "TH")
	ctx := context.Background()

	c, err := uc.Create(ctx, dto.CreateCustomerRequest{Name: " Somchai ", Phone: "081-234-5678"})
	require.NoError(t, err)

	assert.Equal(t, "Somchai", c.Name)
	require.NotNil(t, c.Phone)
	assert.Equal(t, "+66812345678", *c.Phone)
	assert.Nil(t, c.Email)

	_, err = uc.Create(ctx, dto.CreateCustomerRequest{Name: "X", Phone: "12"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateCustomerRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCustomer_UpdateListDelete(t *testing.T) {
	uc := usecase.NewCustomerUseCase(memorytest.NewStore().Customers(), "TH")
	ctx := context.Background()
	c, err := uc.Create(ctx, dto.CreateCustomerRequest{Name: "Malee", Email: "malee@example.com"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateCustomerRequest{Name: "Niran"})
	require.NoError(t, err)

	updated, err := uc.Update(ctx, c.ID, dto.UpdateCustomerRequest{Name: ptr("Malee S.")})
	require.NoError(t, err)
	assert.Equal(t, "Malee S.", updated.Name)
	assert.Equal(t, "malee@example.com", *updated.Email)

	found, err := uc.List(ctx, "EXAMPLE")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, c.ID, found[0].ID)

	_, err = uc.Update(ctx, uuid.New().String(), dto.UpdateCustomerRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, uc.Delete(ctx, c.ID))
	assert.ErrorIs(t, uc.Delete(ctx, c.ID), domain.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, "nope"), domain.ErrNotFound)
}

func TestProduct_CRUD(t *testing.T) {
	uc := usecase.NewProductUseCase(memorytest.NewStore().Products())
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{Name: "Arroz"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "precio obligatorio")

	neg := decimal.NewFromInt(-1)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "Arroz", Price: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	price := decimal.RequireFromString("3150.5")
	p, err := uc.Create(ctx, dto.CreateProductRequest{Name: "Arroz", SKU: "ARR-1", Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "3150.50", p.Price)
	assert.Equal(t, int64(0), p.Stock)

	updated, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Stock: ptr(int64(25))})
	require.NoError(t, err)
	assert.Equal(t, int64(25), updated.Stock)
	assert.Equal(t, "3150.50", updated.Price)

	list, err := uc.List(ctx, "arr-")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{Stock: ptr(int64(-2))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, uc.Delete(ctx, p.ID))
	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUser_InviteYCambioDeRol(t *testing.T) {
	uc := usecase.NewUserUseCase(memorytest.NewStore().Users())
	ctx := context.Background()

	u, err := uc.Invite(ctx, dto.InviteUserRequest{Username: "cajero", Password: "clave"})
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)
	assert.Nil(t, u.FullName)

	_, err = uc.Invite(ctx, dto.InviteUserRequest{Username: "cajero", Password: "otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Invite(ctx, dto.InviteUserRequest{Username: "x", Password: "y", Role: "root"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	const actor = "00000000-0000-0000-0000-0000000000ff"
	changed, err := uc.ChangeRole(ctx, actor, u.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, "owner", changed.Role)

	_, err = uc.ChangeRole(ctx, u.ID, u.ID, "admin")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	_, err = uc.ChangeRole(ctx, actor, u.ID, "root")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.ChangeRole(ctx, actor, uuid.New().String(), "admin")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
