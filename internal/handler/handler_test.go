package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"go-asso-stock/internal/middleware"
	"go-asso-stock/internal/repository"
	"go-asso-stock/internal/service"
	"go-asso-stock/pkg/config"
	"go-asso-stock/pkg/database/databasetest"
	"go-asso-stock/pkg/jwt"
	"go-asso-stock/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool            `json:"success"`
	Kind    string          `json:"kind"`
	Reason  string          `json:"reason"`
	Data    json.RawMessage `json:"data"`
}

type testAPI struct {
	t      *testing.T
	app    *fiber.App
	tokens *jwt.Manager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := databasetest.New(t)
	log := zap.NewNop()

	tenantRepo := repository.NewTenantRepo(db)
	productRepo := repository.NewProductRepo(db)
	ledgerRepo := repository.NewLedgerRepo(db)

	tenants := service.NewTenantService(tenantRepo, nil, log)
	catalog := service.NewCatalogService(db, repository.NewCategoryRepo(db), productRepo, config.DeleteRestrict, nil, log)
	ledger := service.NewLedgerService(db, ledgerRepo, productRepo, nil, nil, log)
	dashboard := service.NewDashboardService(repository.NewDashboardRepo(db), productRepo, ledgerRepo, 10, 5, nil, log)

	tokens := jwt.NewManager("test-secret", "go-asso-stock", 1)
	app := fiber.New()
	app.Use(middleware.RequestLogger(log, nil))
	api := app.Group("/api/v1", middleware.RequireTenant(tokens, tenants, log))
	RegisterRoutes(api, &Handlers{
		Tenant:    NewTenantHandler(tenants),
		Catalog:   NewCatalogHandler(catalog),
		Ledger:    NewLedgerHandler(ledger),
		Dashboard: NewDashboardHandler(dashboard),
		Upload:    NewUploadHandler(storage.NewLocal(t.TempDir()), 1024, log),
	})

	return &testAPI{t: t, app: app, tokens: tokens}
}

func (a *testAPI) token(email, name string) string {
	a.t.Helper()
	token, err := a.tokens.GenerateToken(email, name)
	if err != nil {
		a.t.Fatalf("generate token: %v", err)
	}
	return token
}

func (a *testAPI) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.send(req)
}

func (a *testAPI) send(req *http.Request) (int, envelope) {
	a.t.Helper()
	resp, err := a.app.Test(req, -1)
	if err != nil {
		a.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		a.t.Fatalf("decode %s %s: %v", req.Method, req.URL.Path, err)
	}
	return resp.StatusCode, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestRequireTenant(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing token", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized},
		{"garbage token", "Bearer nope", fiber.StatusUnauthorized},
		{"unknown identity without name", "Bearer " + api.token("ghost@example.org", ""), fiber.StatusUnauthorized},
		{"first contact creates association", "Bearer " + api.token("asso@example.org", "Asso"), fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			status, env := api.send(req)
			if status != tt.want {
				t.Errorf("Expected status %d, got %d (%s)", tt.want, status, env.Reason)
			}
			if tt.want == fiber.StatusUnauthorized && env.Success {
				t.Error("Expected success=false")
			}
		})
	}

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/me?token="+api.token("asso@example.org", ""), nil)
	if status, _ := api.send(req); status != fiber.StatusOK {
		t.Errorf("Expected query token to authenticate, got %d", status)
	}
}

func TestStockFlow(t *testing.T) {
	api := newTestAPI(t)
	token := api.token("asso@example.org", "Asso")

	status, env := api.do(fiber.MethodPost, "/api/v1/categories", token, map[string]string{"name": "Food"})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected category to be created, got %d (%s)", status, env.Reason)
	}
	var category struct {
		ID string `json:"id"`
	}
	decode(t, env.Data, &category)

	status, env = api.do(fiber.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"name":        "Rice",
		"price":       "2.50",
		"category_id": category.ID,
		"unit":        "kg",
	})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected product to be created, got %d (%s)", status, env.Reason)
	}
	var product struct {
		ID           string `json:"id"`
		Quantity     int    `json:"quantity"`
		CategoryName string `json:"category_name"`
	}
	decode(t, env.Data, &product)
	if product.Quantity != 0 || product.CategoryName != "Food" {
		t.Errorf("Unexpected product %+v", product)
	}

	status, env = api.do(fiber.MethodPost, "/api/v1/products/"+product.ID+"/replenish", token, map[string]int{"quantity": 3})
	if status != fiber.StatusCreated {
		t.Fatalf("Expected replenish to succeed, got %d (%s)", status, env.Reason)
	}

	deduct := func(qty int) (int, envelope) {
		return api.do(fiber.MethodPost, "/api/v1/stock/deduct", token, map[string]interface{}{
			"items": []map[string]interface{}{{"product_id": product.ID, "quantity": qty}},
		})
	}

	status, env = deduct(5)
	if status != fiber.StatusConflict || env.Kind != string(service.KindInsufficientStock) {
		t.Errorf("Expected 409 insufficient_stock, got %d %s", status, env.Kind)
	}
	status, env = deduct(2)
	if status != fiber.StatusCreated || !env.Success {
		t.Errorf("Expected deduction to succeed, got %d (%s)", status, env.Reason)
	}

	status, env = api.do(fiber.MethodGet, "/api/v1/products/"+product.ID, token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("Expected product, got %d", status)
	}
	decode(t, env.Data, &product)
	if product.Quantity != 1 {
		t.Errorf("Expected quantity 1, got %d", product.Quantity)
	}

	status, env = api.do(fiber.MethodGet, "/api/v1/transactions?limit=1", token, nil)
	var transactions []struct {
		Type        string `json:"type"`
		ProductName string `json:"product_name"`
	}
	decode(t, env.Data, &transactions)
	if status != fiber.StatusOK || len(transactions) != 1 || transactions[0].ProductName != "Rice" {
		t.Errorf("Expected one enriched transaction, got %d %+v", status, transactions)
	}

	status, env = api.do(fiber.MethodGet, "/api/v1/transactions?product_id="+product.ID+"&from=2000-01-01&to=2999-12-31", token, nil)
	decode(t, env.Data, &transactions)
	if status != fiber.StatusOK || len(transactions) != 2 {
		t.Errorf("Expected the product's two lines, got %d %+v", status, transactions)
	}

	other := api.token("other@example.org", "Other")
	status, env = api.do(fiber.MethodGet, "/api/v1/transactions?product_id="+product.ID, other, nil)
	transactions = nil
	decode(t, env.Data, &transactions)
	if status != fiber.StatusOK || len(transactions) != 0 {
		t.Errorf("Expected no lines for another tenant, got %d %+v", status, transactions)
	}

	status, env = api.do(fiber.MethodGet, "/api/v1/ledger/audit", token, nil)
	var audit struct {
		Consistent bool `json:"consistent"`
	}
	decode(t, env.Data, &audit)
	if status != fiber.StatusOK || !audit.Consistent {
		t.Errorf("Expected a consistent ledger, got %d %+v", status, audit)
	}

	status, env = api.do(fiber.MethodDelete, "/api/v1/categories/"+category.ID, token, nil)
	if status != fiber.StatusConflict || env.Kind != string(service.KindConflict) {
		t.Errorf("Expected restrict policy to refuse, got %d %s", status, env.Kind)
	}

	status, env = api.do(fiber.MethodGet, "/api/v1/dashboard/stock-summary", token, nil)
	var summary struct {
		LowStockCount int `json:"low_stock_count"`
	}
	decode(t, env.Data, &summary)
	if status != fiber.StatusOK || summary.LowStockCount != 1 {
		t.Errorf("Expected one low-stock product, got %d %+v", status, summary)
	}
}

func TestErrorStatuses(t *testing.T) {
	api := newTestAPI(t)
	token := api.token("asso@example.org", "Asso")
	other := api.token("other@example.org", "Other")

	_, env := api.do(fiber.MethodPost, "/api/v1/categories", token, map[string]string{"name": "Food"})
	var category struct {
		ID string `json:"id"`
	}
	decode(t, env.Data, &category)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"bad id", fiber.MethodGet, "/api/v1/products/not-a-uuid", token, nil, fiber.StatusBadRequest},
		{"unknown product", fiber.MethodGet, "/api/v1/products/6f1c1f4e-0000-4000-8000-000000000000", token, nil, fiber.StatusNotFound},
		{"empty deduction", fiber.MethodPost, "/api/v1/stock/deduct", token, map[string]interface{}{"items": []interface{}{}}, fiber.StatusBadRequest},
		{"missing price", fiber.MethodPost, "/api/v1/products", token, map[string]interface{}{"name": "X", "category_id": category.ID}, fiber.StatusBadRequest},
		{"foreign category update", fiber.MethodPut, "/api/v1/categories/" + category.ID, other, map[string]string{"name": "Mine"}, fiber.StatusNotFound},
		{"negative limit", fiber.MethodGet, "/api/v1/transactions?limit=-1", token, nil, fiber.StatusBadRequest},
		{"negative offset", fiber.MethodGet, "/api/v1/transactions?offset=-1", token, nil, fiber.StatusBadRequest},
		{"bad product filter", fiber.MethodGet, "/api/v1/transactions?product_id=nope", token, nil, fiber.StatusBadRequest},
		{"bad from date", fiber.MethodGet, "/api/v1/transactions?from=03/01/2026", token, nil, fiber.StatusBadRequest},
		{"from after to", fiber.MethodGet, "/api/v1/transactions?from=2026-03-02&to=2026-03-01", token, nil, fiber.StatusBadRequest},
		{"too many days", fiber.MethodGet, "/api/v1/dashboard/stock-movement?days=400", token, nil, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := api.do(tt.method, tt.path, tt.token, tt.body)
			if status != tt.want {
				t.Errorf("Expected %d, got %d (%s)", tt.want, status, env.Reason)
			}
			if env.Success {
				t.Error("Expected success=false")
			}
		})
	}
}

func TestUploads(t *testing.T) {
	api := newTestAPI(t)
	token := api.token("asso@example.org", "Asso")

	upload := func(content []byte) (int, envelope) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="rice.png"`)
		header.Set("Content-Type", "image/png")
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(content)
		w.Close()

		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/uploads", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		return api.send(req)
	}

	status, env := upload([]byte("png bytes"))
	if status != fiber.StatusCreated {
		t.Fatalf("Expected upload to succeed, got %d (%s)", status, env.Reason)
	}
	var stored struct {
		Path string `json:"path"`
	}
	decode(t, env.Data, &stored)

	if status, _ := upload(make([]byte, 2048)); status != fiber.StatusBadRequest {
		t.Errorf("Expected oversized upload to be refused, got %d", status)
	}

	if status, _ := api.do(fiber.MethodDelete, "/api/v1/uploads", token, map[string]string{"path": stored.Path}); status != fiber.StatusOK {
		t.Errorf("Expected delete to succeed, got %d", status)
	}
	if status, _ := api.do(fiber.MethodDelete, "/api/v1/uploads", token, map[string]string{"path": stored.Path}); status != fiber.StatusNotFound {
		t.Errorf("Expected second delete to report not found, got %d", status)
	}
	if status, _ := api.do(fiber.MethodDelete, "/api/v1/uploads", token, map[string]string{"path": "/uploads/../secret"}); status != fiber.StatusBadRequest {
		t.Errorf("Expected traversal to be refused, got %d", status)
	}
}

func TestStatusOf(t *testing.T) {
	tests := map[service.ErrorKind]int{
		service.KindPrecondition:      fiber.StatusBadRequest,
		service.KindNotFound:          fiber.StatusNotFound,
		service.KindInsufficientStock: fiber.StatusConflict,
		service.KindConflict:          fiber.StatusConflict,
		service.KindStore:             fiber.StatusInternalServerError,
	}
	for kind, want := range tests {
		if got := statusOf(kind); got != want {
			t.Errorf("statusOf(%s) = %d, want %d", kind, got, want)
		}
	}
}
