package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tienda-pos/backoffice-api/internal/application/auth"
	"github.com/tienda-pos/backoffice-api/internal/application/dto"
	"github.com/tienda-pos/backoffice-api/internal/domain"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
	"github.com/tienda-pos/backoffice-api/internal/infrastructure/memorytest"
	"github.com/tienda-pos/backoffice-api/pkg/jwt"
)

const secret = "test-secret"

func newAuth(t *testing.T) (*auth.AuthUseCase, *entity.User) {
	t.Helper()
	store := memorytest.NewStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("clave123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &entity.User{
		ID:           "00000000-0000-0000-0000-000000000001",
		Username:     "owner",
		PasswordHash: string(hash),
		FullName:     "Dueña",
		Role:         entity.RoleOwner,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "test"}), u
}

func TestLogin_OK(t *testing.T) {
	uc, u := newAuth(t)

	res, err := uc.Login(context.Background(), dto.LoginRequest{Username: "owner", Password: "clave123"})
	require.NoError(t, err)

	assert.Equal(t, u.ID, res.User.ID)
	assert.Equal(t, "owner", res.User.Role)
	id, err := jwt.Parse(secret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, "owner", id.Username)
}

func TestLogin_CredencialesIncorrectas(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()

	_, err := uc.Login(ctx, dto.LoginRequest{Username: "owner", Password: "mala"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "clave123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "owner"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMe(t *testing.T) {
	uc, u := newAuth(t)

	got, err := uc.Me(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner", got.Username)

	_, err = uc.Me(context.Background(), "00000000-0000-0000-0000-000000000009")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
