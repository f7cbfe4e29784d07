package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/service"
	"go-stock-ledger/internal/testutil"
	"go-stock-ledger/internal/ws"
	"go-stock-ledger/pkg/mailer"
	"go-stock-ledger/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	app       *fiber.App
	db        *gorm.DB
	uploadDir string
	auth      service.AuthService
	roleRepo  repository.RoleRepository
	userRepo  repository.UserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)

	companyRepo := repository.NewCompanyRepo(db)
	shopRepo := repository.NewShopRepo(db)
	productRepo := repository.NewProductRepo(db)
	entryRepo := repository.NewStockEntryRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	privileges, err := privilegeRepo.SeedDefaults()
	require.NoError(t, err)
	require.NoError(t, roleRepo.SeedDefaults(privileges))

	hub := ws.NewHub()
	go hub.Run()

	uploadDir := t.TempDir()
	blobs := storage.NewLocalStore(uploadDir, "/uploads")
	authService := service.NewAuthService(userRepo, roleRepo, mailer.LogSender{}, service.ResetLinkConfig{BaseURL: "http://localhost", SiteName: "Ledger"})

	handlers := Handlers{
		Auth:      NewAuthHandler(authService),
		Catalog:   NewCatalogHandler(service.NewCatalogService(companyRepo, shopRepo, productRepo, blobs, hub)),
		Ledger:    NewLedgerHandler(service.NewLedgerService(entryRepo, productRepo, companyRepo, shopRepo, hub)),
		Report:    NewReportHandler(service.NewReportService(entryRepo, productRepo, companyRepo)),
		Dashboard: NewDashboardHandler(service.NewDashboardService(entryRepo)),
		User:      NewUserHandler(service.NewUserService(userRepo, roleRepo)),
		Role:      NewRoleHandler(roleRepo, privilegeRepo),
	}

	app := NewApp("test", false)
	SetupRoutes(app, handlers, userRepo, hub)

	return &testServer{app: app, db: db, uploadDir: uploadDir, auth: authService, roleRepo: roleRepo, userRepo: userRepo}
}

// register creates a member account and returns its token
func (s *testServer) register(t *testing.T, username string) string {
	t.Helper()
	resp, err := s.auth.Register(&service.RegisterRequest{
		Username: username, Email: username + "@example.com",
		Password: "password123", PasswordConfirm: "password123",
	})
	require.NoError(t, err)
	return resp.Token
}

// promote gives the user the ADMIN role and returns a fresh token
func (s *testServer) promote(t *testing.T, username string) string {
	t.Helper()
	user, err := s.userRepo.FindByUsername(username)
	require.NoError(t, err)
	role, err := s.roleRepo.FindByCode(model.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, s.userRepo.UpdateRole(user.ID, role.ID))

	resp, err := s.auth.Login(username, "password123")
	require.NoError(t, err)
	return resp.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func dataField(t *testing.T, body map[string]interface{}, key string) string {
	t.Helper()
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", body)
	v, _ := data[key].(string)
	return v
}

func TestRegisterAndLoginEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"username": "alice", "email": "alice@example.com",
		"password": "password123", "password_confirm": "password123",
	})
	require.Equal(t, 201, status)
	assert.NotEmpty(t, body["token"])

	status, body = s.do(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"username": "alice", "email": "alice2@example.com",
		"password": "password123", "password_confirm": "password123",
	})
	assert.Equal(t, 409, status)
	assert.Contains(t, body["fields"], "username")

	status, _ = s.do(t, "POST", "/api/v1/auth/login", "", map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, 401, status)

	status, body = s.do(t, "POST", "/api/v1/auth/login", "", map[string]string{"login": "alice@example.com", "password": "password123"})
	require.Equal(t, 200, status)
	token := body["token"].(string)

	status, _ = s.do(t, "POST", "/api/v1/auth/logout", token, nil)
	assert.Equal(t, 200, status)

	status, _ = s.do(t, "GET", "/api/v1/overview", token, nil)
	assert.Equal(t, 401, status, "logged out token is rejected")
}

func TestOverviewRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, "GET", "/api/v1/overview", "", nil)
	assert.Equal(t, 401, status)

	token := s.register(t, "alice")
	status, body := s.do(t, "GET", "/api/v1/overview", token, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, false, body["has_stock"])
	assert.Nil(t, body["report"])
	assert.Len(t, body["actions"], len(service.CreationActions))
}

func TestCatalogAndLedgerFlow(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	status, body := s.do(t, "POST", "/api/v1/companies", alice, map[string]string{"name": "Acme"})
	require.Equal(t, 201, status)
	companyID := dataField(t, body, "id")

	status, _ = s.do(t, "POST", "/api/v1/companies", alice, map[string]string{"name": "Acme"})
	assert.Equal(t, 409, status)

	status, body = s.do(t, "POST", "/api/v1/products", alice, map[string]interface{}{"title": "Anvil", "company_id": companyID})
	assert.Equal(t, 400, status)
	assert.Contains(t, body["fields"], "ref_weight")

	status, body = s.do(t, "POST", "/api/v1/products", alice, map[string]interface{}{"title": "Anvil", "company_id": companyID, "ref_weight": 10.0})
	require.Equal(t, 201, status)
	productID := dataField(t, body, "id")
	assert.Equal(t, "anvil", dataField(t, body, "slug"))

	status, body = s.do(t, "POST", "/api/v1/stock", alice, map[string]interface{}{"product_id": productID, "weight": 9.5})
	require.Equal(t, 201, status)
	entryID := dataField(t, body, "id")
	assert.Equal(t, companyID, dataField(t, body, "company_id"))

	status, body = s.do(t, "POST", "/api/v1/stock", alice, map[string]interface{}{"product_id": productID})
	assert.Equal(t, 400, status)
	assert.Contains(t, body["fields"], "weight")

	status, _ = s.do(t, "POST", "/api/v1/stock", alice, map[string]interface{}{"product_id": "6f1c1d8e-8d55-4a53-9d8e-4c1f0b0e9a11", "weight": 1.0})
	assert.Equal(t, 404, status)

	status, _ = s.do(t, "PUT", "/api/v1/stock/"+entryID, bob, map[string]interface{}{"weight": 1.0})
	assert.Equal(t, 403, status)
	status, _ = s.do(t, "DELETE", "/api/v1/stock/"+entryID, bob, nil)
	assert.Equal(t, 403, status)

	status, body = s.do(t, "GET", "/api/v1/overview", alice, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, true, body["has_stock"])
	summaries := body["report"].(map[string]interface{})["summaries"].([]interface{})
	require.Len(t, summaries, 1)
	first := summaries[0].(map[string]interface{})
	assert.EqualValues(t, 1, first["unit_count"])
	assert.EqualValues(t, 1, first["mismatch_count"])

	status, body = s.do(t, "GET", "/api/v1/products/anvil/stock", alice, nil)
	require.Equal(t, 200, status)
	assert.Len(t, body["entries"], 1)

	status, _ = s.do(t, "DELETE", "/api/v1/stock/"+entryID, alice, nil)
	assert.Equal(t, 200, status)
}

func TestCatalogDeleteNeedsPrivilege(t *testing.T) {
	s := newTestServer(t)
	member := s.register(t, "alice")
	s.register(t, "root")
	admin := s.promote(t, "root")

	status, body := s.do(t, "POST", "/api/v1/shops", member, map[string]string{"name": "Corner"})
	require.Equal(t, 201, status)
	shopID := dataField(t, body, "id")

	status, _ = s.do(t, "DELETE", "/api/v1/shops/"+shopID, member, nil)
	assert.Equal(t, 403, status)

	status, _ = s.do(t, "DELETE", "/api/v1/shops/"+shopID, admin, nil)
	assert.Equal(t, 200, status)

	status, _ = s.do(t, "DELETE", "/api/v1/shops/"+shopID, admin, nil)
	assert.Equal(t, 404, status)
}

func TestCreateProductMultipartPhoto(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "alice")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("title", "Iron Anvil"))
	require.NoError(t, w.WriteField("ref_weight", "12.5"))
	part, err := w.CreateFormFile("photo", "anvil.PNG")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake png"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/v1/products", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	status, body := s.send(t, req)
	require.Equal(t, 201, status, "%v", body)
	assert.Equal(t, "/uploads/images/iron-anvil.png", dataField(t, body, "photo"))

	stored, err := os.ReadFile(filepath.Join(s.uploadDir, "images", "iron-anvil.png"))
	require.NoError(t, err)
	assert.Equal(t, "fake png", string(stored))
}

func TestSearchIsPublic(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "alice")
	status, _ := s.do(t, "POST", "/api/v1/products", token, map[string]interface{}{"title": "Anvil", "ref_weight": 1.0})
	require.Equal(t, 201, status)

	status, body := s.do(t, "GET", "/api/v1/search?q=anv", "", nil)
	require.Equal(t, 200, status)
	assert.Len(t, body["products"], 1)
	assert.Nil(t, body["report"])

	status, body = s.do(t, "GET", "/api/v1/search?q=zzz", token, nil)
	require.Equal(t, 200, status)
	assert.Empty(t, body["products"])
}

func TestCatalogOptionsPlaceholder(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/v1/catalog/options", "/api/v1/catalog/options?manufacturer=junk"} {
		status, body := s.do(t, "GET", path, "", nil)
		require.Equal(t, 200, status)
		options := body["options"].([]interface{})
		require.Len(t, options, 1)
		assert.Equal(t, service.PlaceholderOption.Label, options[0].(map[string]interface{})["label"])
	}
}

func TestPasswordResetEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice")

	status, _ := s.do(t, "POST", "/api/v1/auth/password-reset", "", map[string]string{"email": "alice@example.com"})
	assert.Equal(t, 200, status)

	status, _ = s.do(t, "POST", "/api/v1/auth/password-reset", "", map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, 200, status)

	status, body := s.do(t, "POST", "/api/v1/auth/password-reset/confirm", "", map[string]string{
		"uid": "bogus", "token": "bogus", "new_password": "password456", "new_password_confirm": "password456",
	})
	assert.Equal(t, 400, status)
	assert.Contains(t, body["fields"], "token")
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, "GET", "/nope", "", nil)
	assert.Equal(t, 404, status)
	assert.Equal(t, "Page not found", body["error"])
}
