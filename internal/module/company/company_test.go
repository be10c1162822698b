package company

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/storage"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/testutil"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func newTestService(t *testing.T) domain.CompanyService {
	t.Helper()
	return NewCompanyService(NewCompanyRepository(testutil.OpenDB(t, &domain.Company{})))
}

func TestCompanyLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Get(ctx); !domain.IsNotFound(err) {
		t.Fatalf("expected not found before create, got %v", err)
	}
	if _, err := svc.Update(ctx, domain.CompanyInput{Name: "Acme"}); !domain.IsNotFound(err) {
		t.Errorf("expected not found on update before create, got %v", err)
	}

	c, err := svc.Create(ctx, domain.CompanyInput{Name: " Acme ", Email: "Info@Acme.io"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.Name != "Acme" || c.Email != "info@acme.io" {
		t.Errorf("expected normalized fields, got %+v", c)
	}
	if _, err := svc.Create(ctx, domain.CompanyInput{Name: "Other"}); !domain.IsAlreadyExists(err) {
		t.Errorf("expected already exists, got %v", err)
	}

	if _, err := svc.SetLogo(ctx, "/files/company/logo?v=1"); err != nil {
		t.Fatalf("SetLogo() error = %v", err)
	}
	got, err := svc.Update(ctx, domain.CompanyInput{Name: "Acme Ltd", Phone: "555"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.ID != c.ID || got.Name != "Acme Ltd" || got.LogoURL != "/files/company/logo?v=1" {
		t.Errorf("unexpected company after update: %+v", got)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(t)
	tests := []struct {
		name string
		in   domain.CompanyInput
	}{
		{"blank name", domain.CompanyInput{Name: "  "}},
		{"bad email", domain.CompanyInput{Name: "Acme", Email: "nope"}},
		{"long tax id", domain.CompanyInput{Name: "Acme", TaxID: strings.Repeat("1", 51)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tt.in); !domain.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCompanyAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, err := storage.NewLocalStore(t.TempDir(), "/files")
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	r := gin.New()
	NewModule(newTestService(t), storage.NewUploader(store, 1<<10, nil), pkg.Open{}).RegisterRoutes(r.Group("/api/v1"))

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}
	upload := func(data []byte) *httptest.ResponseRecorder {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		part, _ := mw.CreateFormFile("file", "logo.png")
		part.Write(data)
		mw.Close()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/company/logo", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := do(http.MethodGet, "/api/v1/company", ""); w.Code != http.StatusNotFound {
		t.Errorf("get before create: expected 404, got %d", w.Code)
	}
	if w := upload(pngBytes); w.Code != http.StatusNotFound {
		t.Errorf("logo before create: expected 404, got %d", w.Code)
	}
	if w := do(http.MethodPost, "/api/v1/company", `{"name":"Acme"}`); w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if w := do(http.MethodPost, "/api/v1/company", `{"name":"Acme"}`); w.Code != http.StatusConflict {
		t.Errorf("second create: expected 409, got %d", w.Code)
	}
	if w := do(http.MethodPut, "/api/v1/company", `{"name":""}`); w.Code != http.StatusBadRequest {
		t.Errorf("blank name: expected 400, got %d", w.Code)
	}
	if w := upload([]byte("just text")); w.Code != http.StatusBadRequest {
		t.Errorf("text logo: expected 400, got %d", w.Code)
	}

	w := upload(pngBytes)
	if w.Code != http.StatusOK {
		t.Fatalf("logo: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = do(http.MethodGet, "/api/v1/company", "")
	var resp struct {
		Data domain.Company `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(resp.Data.LogoURL, "/files/company/logo?v=") {
		t.Errorf("unexpected logo url %q", resp.Data.LogoURL)
	}
}

func TestNewModule_PanicsOnNilDependencies(t *testing.T) {
	store, _ := storage.NewLocalStore(t.TempDir(), "/files")
	tests := []struct {
		name     string
		svc      domain.CompanyService
		uploader *storage.Uploader
	}{
		{"nil service", nil, storage.NewUploader(store, 1<<10, nil)},
		{"nil uploader", NewCompanyService(nil), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			NewModule(tt.svc, tt.uploader, nil)
		})
	}
}
