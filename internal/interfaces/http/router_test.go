package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tienda-pos/backoffice-api/internal/application/auth"
	"github.com/tienda-pos/backoffice-api/internal/application/documents"
	"github.com/tienda-pos/backoffice-api/internal/application/usecase"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
	"github.com/tienda-pos/backoffice-api/internal/infrastructure/memorytest"
	"github.com/tienda-pos/backoffice-api/internal/infrastructure/pdf"
	"github.com/tienda-pos/backoffice-api/internal/infrastructure/spreadsheet"
	"github.com/tienda-pos/backoffice-api/internal/infrastructure/xmlexport"
	apphttp "github.com/tienda-pos/backoffice-api/internal/interfaces/http"
	pkgjwt "github.com/tienda-pos/backoffice-api/pkg/jwt"
)

const (
	ownerID = "00000000-0000-0000-0000-0000000000a1"
	adminID = "00000000-0000-0000-0000-0000000000a2"
)

type testServer struct {
	app   *fiber.App
	store *memorytest.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memorytest.NewStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("clave123"), bcrypt.MinCost)
	require.NoError(t, err)
	ctx := context.Background()
	for _, u := range []*entity.User{
		{ID: ownerID, Username: "owner", PasswordHash: string(hash), Role: entity.RoleOwner, CreatedAt: time.Now()},
		{ID: adminID, Username: "admin", PasswordHash: string(hash), Role: entity.RoleAdmin, CreatedAt: time.Now()},
	} {
		require.NoError(t, store.Users().Create(ctx, u))
	}

	xmlRenderer := xmlexport.NewDocumentRenderer()
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:     auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		UserUC:     usecase.NewUserUseCase(store.Users()),
		CustomerUC: usecase.NewCustomerUseCase(store.Customers(), "TH"),
		ProductUC:  usecase.NewProductUseCase(store.Products()),
		DocumentUC: documents.NewUseCase(store.Documents(), store.Customers(), store.Products(), store, nil, nil),
		ExportUC: documents.NewExportUseCase(store.Documents(),
			pdf.NewDocumentRenderer("Tienda", xmlRenderer), xmlRenderer, spreadsheet.NewDocumentsRenderer()),
		JWTSecret: testJWTSecret,
		Cookie:    apphttp.CookieSettings{Name: testCookieName, ExpMinutes: testExpMin},
	})
	return &testServer{app: app, store: store}
}

func (s *testServer) do(t *testing.T, method, path, userID, role string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{UserID: userID, Username: role, Role: role}, testIssuer, testExpMin)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(raw))

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func sampleItems() []map[string]any {
	return []map[string]any{
		{"productName": "Cemento", "quantity": 1, "unitPrice": 37800},
		{"productName": "Arena", "quantity": 2, "unitPrice": 4500},
		{"productName": "Clavos", "quantity": 3, "unitPrice": 860},
	}
}

func (s *testServer) createDoc(t *testing.T, docType string) map[string]any {
	t.Helper()
	resp, body := s.do(t, http.MethodPost, "/api/documents", adminID, "admin", map[string]any{
		"docType":      docType,
		"customerName": "Somchai",
		"items":        sampleItems(),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	return body["document"].(map[string]any)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestLogin_CookieYMe(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/auth/login", "", "", map[string]string{"username": "owner", "password": "clave123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, "owner", user["username"])
	assert.NotContains(t, user, "passwordHash")

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == testCookieName {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.NotEmpty(t, session.Value)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: session.Value})
	meResp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer meResp.Body.Close()
	assert.Equal(t, http.StatusOK, meResp.StatusCode)
	var me map[string]map[string]any
	require.NoError(t, json.NewDecoder(meResp.Body).Decode(&me))
	assert.Equal(t, ownerID, me["user"]["id"])
}

func TestLogin_CredencialesIncorrectas(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodPost, "/api/auth/login", "", "", map[string]string{"username": "owner", "password": "mala"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestLogin_SinCampos(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodPost, "/api/auth/login", "", "", map[string]string{"username": "owner"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestLogout_LimpiaCookie(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodPost, "/api/auth/logout", "", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["message"])
	assert.Contains(t, resp.Header.Get("Set-Cookie"), testCookieName+"=")
}

func TestDocuments_RequiereSesion(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, http.MethodGet, "/api/documents", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDocuments_CrearCalculaTotales(t *testing.T) {
	s := newTestServer(t)
	doc := s.createDoc(t, "quotation")

	assert.Equal(t, fmt.Sprintf("QT-%d-001", time.Now().UTC().Year()), doc["docNumber"])
	assert.Equal(t, "49380.00", doc["subtotal"])
	assert.Equal(t, "3456.60", doc["tax"])
	assert.Equal(t, "52836.60", doc["total"])
	assert.Equal(t, "draft", doc["status"])
	assert.Equal(t, adminID, doc["createdBy"])
	assert.Len(t, doc["items"], 3)
}

func TestDocuments_CrearSinItems(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodPost, "/api/documents", adminID, "admin", map[string]any{
		"docType": "receipt",
		"items":   []any{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.Zero(t, s.store.DocumentCount())
}

func TestDocuments_CrearTipoInvalido(t *testing.T) {
	s := newTestServer(t)
	resp, _ := s.do(t, http.MethodPost, "/api/documents", adminID, "admin", map[string]any{
		"docType": "invoice",
		"items":   sampleItems(),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDocuments_GetYNoEncontrado(t *testing.T) {
	s := newTestServer(t)
	doc := s.createDoc(t, "voi")

	resp, body := s.do(t, http.MethodGet, "/api/documents/"+doc["id"].(string), adminID, "admin", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, doc["docNumber"], body["document"].(map[string]any)["docNumber"])

	resp, body = s.do(t, http.MethodGet, "/api/documents/00000000-0000-0000-0000-00000000ffff", adminID, "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])

	resp, _ = s.do(t, http.MethodGet, "/api/documents/no-es-uuid", adminID, "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDocuments_ActualizarSinItemsConservaTotales(t *testing.T) {
	s := newTestServer(t)
	doc := s.createDoc(t, "quotation")

	resp, body := s.do(t, http.MethodPatch, "/api/documents/"+doc["id"].(string), adminID, "admin", map[string]any{
		"notes":  "entregar el lunes",
		"status": "confirmed",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	updated := body["document"].(map[string]any)
	assert.Equal(t, "52836.60", updated["total"])
	assert.Equal(t, "confirmed", updated["status"])
	assert.Equal(t, "entregar el lunes", updated["notes"])
}

func TestDocuments_ActualizarClienteNoUUID(t *testing.T) {
	s := newTestServer(t)
	doc := s.createDoc(t, "quotation")

	resp, body := s.do(t, http.MethodPatch, "/api/documents/"+doc["id"].(string), adminID, "admin", map[string]any{
		"customerId":   "not-a-uuid",
		"customerName": "X",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	resp, body = s.do(t, http.MethodPatch, "/api/documents/"+doc["id"].(string), adminID, "admin", map[string]any{
		"customerId":   "00000000-0000-0000-0000-00000000dead",
		"customerName": "X",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	_, body = s.do(t, http.MethodGet, "/api/documents/"+doc["id"].(string), adminID, "admin", nil)
	got := body["document"].(map[string]any)
	assert.Nil(t, got["customerId"])
	assert.Equal(t, "Somchai", got["customerName"])
}

func TestDocuments_CrearConClienteInexistente(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodPost, "/api/documents", adminID, "admin", map[string]any{
		"docType":      "quotation",
		"customerId":   "00000000-0000-0000-0000-00000000dead",
		"customerName": "X",
		"items":        sampleItems(),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.Zero(t, s.store.DocumentCount())
}

func TestDocuments_ClienteExistenteConservaNombreRecibido(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodPost, "/api/customers", adminID, "admin", map[string]string{"name": "Malee", "phone": "0812345678"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	customerID := body["customer"].(map[string]any)["id"].(string)

	resp, body = s.do(t, http.MethodPost, "/api/documents", adminID, "admin", map[string]any{
		"docType":      "quotation",
		"customerId":   customerID,
		"customerName": "Malee (obra)",
		"items":        sampleItems(),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	doc := body["document"].(map[string]any)
	assert.Equal(t, customerID, doc["customerId"])
	assert.Equal(t, "Malee (obra)", doc["customerName"])
}

func TestDocuments_ConvertirUnaSolaVez(t *testing.T) {
	s := newTestServer(t)
	q := s.createDoc(t, "quotation")
	id := q["id"].(string)

	resp, body := s.do(t, http.MethodPost, "/api/documents/"+id+"/convert", adminID, "admin", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	receipt := body["document"].(map[string]any)
	assert.Equal(t, "receipt", receipt["docType"])
	assert.Equal(t, "confirmed", receipt["status"])
	assert.Equal(t, id, receipt["convertedFrom"])
	assert.True(t, strings.HasPrefix(receipt["docNumber"].(string), "RC-"))

	_, body = s.do(t, http.MethodGet, "/api/documents/"+id, adminID, "admin", nil)
	assert.Equal(t, "converted", body["document"].(map[string]any)["status"])

	resp, body = s.do(t, http.MethodPost, "/api/documents/"+id+"/convert", adminID, "admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_OPERATION", body["code"])
	assert.Equal(t, 2, s.store.DocumentCount())
}

func TestDocuments_ConvertirReciboFalla(t *testing.T) {
	s := newTestServer(t)
	rc := s.createDoc(t, "receipt")
	resp, _ := s.do(t, http.MethodPost, "/api/documents/"+rc["id"].(string)+"/convert", adminID, "admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDocuments_EliminarYListar(t *testing.T) {
	s := newTestServer(t)
	a := s.createDoc(t, "quotation")
	s.createDoc(t, "receipt")

	resp, body := s.do(t, http.MethodGet, "/api/documents?type=receipt", adminID, "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["documents"], 1)

	resp, _ = s.do(t, http.MethodDelete, "/api/documents/"+a["id"].(string), adminID, "admin", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.do(t, http.MethodDelete, "/api/documents/"+a["id"].(string), adminID, "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDocuments_StatsNoSeConfundeConID(t *testing.T) {
	s := newTestServer(t)
	rc := s.createDoc(t, "receipt")
	_, _ = s.do(t, http.MethodPatch, "/api/documents/"+rc["id"].(string), adminID, "admin", map[string]any{"status": "confirmed"})
	s.createDoc(t, "quotation")

	resp, body := s.do(t, http.MethodGet, "/api/documents/stats/summary", adminID, "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := body["stats"].(map[string]any)
	assert.EqualValues(t, 52836.6, stats["totalRevenue"])
	assert.EqualValues(t, 1, stats["quotationCount"])
	assert.EqualValues(t, 0, stats["voiCount"])
	assert.EqualValues(t, 1, stats["receiptCount"])
}

func TestDocuments_XMLConHuella(t *testing.T) {
	s := newTestServer(t)
	doc := s.createDoc(t, "quotation")

	resp, _ := s.do(t, http.MethodGet, "/api/documents/"+doc["id"].(string)+"/xml", adminID, "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, documents.ContentTypeXML, resp.Header.Get("Content-Type"))
	assert.Len(t, resp.Header.Get(apphttp.HeaderDocumentFingerprint), 64)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), doc["docNumber"].(string))
}

func TestDocuments_PDF(t *testing.T) {
	s := newTestServer(t)
	doc := s.createDoc(t, "receipt")

	resp, _ := s.do(t, http.MethodGet, "/api/documents/"+doc["id"].(string)+"/pdf", adminID, "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, documents.ContentTypePDF, resp.Header.Get("Content-Type"))
	raw, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestDocuments_ExportXLSX(t *testing.T) {
	s := newTestServer(t)
	s.createDoc(t, "quotation")

	resp, _ := s.do(t, http.MethodGet, "/api/documents/export?type=quotation", adminID, "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, documents.ContentTypeXLSX, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
}

func TestUsers_SoloOwner(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodGet, "/api/users", adminID, "admin", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := s.do(t, http.MethodGet, "/api/users", ownerID, "owner", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["users"], 2)
}

func TestUsers_InvitarYDuplicado(t *testing.T) {
	s := newTestServer(t)
	in := map[string]string{"username": "cajero", "password": "secreta1"}

	resp, body := s.do(t, http.MethodPost, "/api/users/invite", ownerID, "owner", in)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "admin", body["user"].(map[string]any)["role"])

	resp, body = s.do(t, http.MethodPost, "/api/users/invite", ownerID, "owner", in)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", body["code"])
}

func TestUsers_CambiarRol(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPatch, "/api/users/"+adminID+"/role", ownerID, "owner", map[string]string{"role": "owner"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "owner", body["user"].(map[string]any)["role"])

	resp, _ = s.do(t, http.MethodPatch, "/api/users/"+ownerID+"/role", ownerID, "owner", map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPatch, "/api/users/"+adminID+"/role", ownerID, "owner", map[string]string{"role": "root"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCustomers_CRUD(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/customers", adminID, "admin", map[string]string{"name": "Malee", "phone": "081-234-5678"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	customer := body["customer"].(map[string]any)
	assert.Equal(t, "+66812345678", customer["phone"])
	id := customer["id"].(string)

	resp, body = s.do(t, http.MethodGet, "/api/customers?search=mal", adminID, "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["customers"], 1)

	resp, body = s.do(t, http.MethodPatch, "/api/customers/"+id, adminID, "admin", map[string]string{"email": "malee@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "malee@example.com", body["customer"].(map[string]any)["email"])

	resp, _ = s.do(t, http.MethodDelete, "/api/customers/"+id, adminID, "admin", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/customers", adminID, "admin", map[string]string{"phone": "0812345678"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProducts_CRUD(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/products", adminID, "admin", map[string]any{"name": "Cemento", "sku": "CEM-50", "price": "185.5", "stock": 10})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	product := body["product"].(map[string]any)
	assert.Equal(t, "185.50", product["price"])
	id := product["id"].(string)

	resp, body = s.do(t, http.MethodPatch, "/api/products/"+id, adminID, "admin", map[string]any{"stock": 4})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.EqualValues(t, 4, body["product"].(map[string]any)["stock"])
	assert.Equal(t, "185.50", body["product"].(map[string]any)["price"])

	resp, _ = s.do(t, http.MethodPost, "/api/products", adminID, "admin", map[string]any{"name": "Sin precio"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/api/products/"+id, adminID, "admin", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRutaInexistente(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, http.MethodGet, "/api/nada", adminID, "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
}
