package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	id := Identity{UserID: "u-1", Username: "owner", Role: "owner"}
	tok, err := Generate("secreto", id, "backoffice-api", 60)
	require.NoError(t, err)

	got, err := Parse("secreto", tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := Generate("secreto", Identity{UserID: "u-1", Role: "admin"}, "x", 60)
	require.NoError(t, err)

	_, err = Parse("otro", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := Generate("secreto", Identity{UserID: "u-1", Role: "admin"}, "x", -1)
	require.NoError(t, err)

	_, err = Parse("secreto", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := Generate("", Identity{UserID: "u-1"}, "x", 60)
	assert.Error(t, err)
}
