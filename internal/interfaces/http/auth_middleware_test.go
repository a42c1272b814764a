package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/tienda-pos/backoffice-api/internal/interfaces/http"
	pkgjwt "github.com/tienda-pos/backoffice-api/pkg/jwt"
)

const (
	testJWTSecret  = "test-secret-key-for-unit-tests"
	testCookieName = "token"
	testUserID     = "00000000-0000-0000-0000-000000000001"
	testIssuer     = "backoffice-test"
	testExpMin     = 60
)

// buildTestApp app mínima con AuthMiddleware + RequireRole y un handler que responde 200.
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret, testCookieName),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"ok":       true,
				"role":     apphttp.GetRole(c),
				"userId":   apphttp.GetUserID(c),
				"username": apphttp.GetUsername(c),
			})
		},
	)
	return app
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{UserID: testUserID, Username: "somchai", Role: role}, testIssuer, testExpMin)
	require.NoError(t, err)
	return tok
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRequireRole_OwnerAccede(t *testing.T) {
	app := buildTestApp("owner")
	resp := doRequest(t, app, "Bearer "+tokenFor(t, "owner"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "owner", body["role"])
	assert.Equal(t, testUserID, body["userId"])
	assert.Equal(t, "somchai", body["username"])
}

func TestRequireRole_VariosRoles(t *testing.T) {
	app := buildTestApp("owner", "admin")
	resp := doRequest(t, app, "Bearer "+tokenFor(t, "admin"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_AdminBloqueadoEnRutaOwner(t *testing.T) {
	app := buildTestApp("owner")
	resp := doRequest(t, app, "Bearer "+tokenFor(t, "admin"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequireRole_TokenSinRol_Retorna401(t *testing.T) {
	app := buildTestApp("owner")
	resp := doRequest(t, app, "Bearer "+tokenFor(t, ""))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_ROLE")
}

func TestAuthMiddleware_SinToken(t *testing.T) {
	app := buildTestApp("owner")
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_TokenInvalido(t *testing.T) {
	app := buildTestApp("owner")
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

func TestAuthMiddleware_FormatoIncorrecto(t *testing.T) {
	app := buildTestApp("owner")
	resp := doRequest(t, app, "Token "+tokenFor(t, "owner"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_Cookie(t *testing.T) {
	app := buildTestApp("admin")
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: tokenFor(t, "admin")})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware_CookieTienePrioridad(t *testing.T) {
	app := buildTestApp("admin")
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: tokenFor(t, "admin")})
	req.Header.Set("Authorization", "Bearer basura")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
