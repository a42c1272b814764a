package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerRegistrado(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var parsed struct {
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	for _, p := range []string{"/api/auth/login", "/api/documents", "/api/documents/{id}/convert", "/api/documents/stats/summary"} {
		assert.Contains(t, parsed.Paths, p)
	}
}

func TestSwagger_ConvertDocumentaCotizacionesCanceladas(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var parsed struct {
		Paths map[string]map[string]struct {
			Description string `json:"description"`
		} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	convert := parsed.Paths["/api/documents/{id}/convert"]["post"]
	assert.Contains(t, convert.Description, "canceladas")
	assert.Contains(t, convert.Description, "INVALID_OPERATION")
}
