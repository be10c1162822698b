package pkg

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
)

type widgetRequest struct {
	Code string `json:"code" binding:"required,max=32"`
}

type fakeWidgetService struct {
	lastQuery listview.Query
	lastSel   listview.Selection
	created   []string
	deleted   int64
	err       error
}

func (f *fakeWidgetService) Create(_ context.Context, in string) (*widget, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	return &widget{Code: in}, nil
}

func (f *fakeWidgetService) Get(_ context.Context, id uint) (*widget, error) {
	if f.err != nil {
		return nil, f.err
	}
	w := &widget{Code: "W"}
	w.ID = id
	return w, nil
}

func (f *fakeWidgetService) List(_ context.Context, q listview.Query) (*domain.PageResult[widget], error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return &domain.PageResult[widget]{Items: []widget{{Code: "W01"}}, Total: 1, Page: 1, PageSize: q.PageSize, TotalPages: 1}, nil
}

func (f *fakeWidgetService) Update(_ context.Context, id uint, in string) (*widget, error) {
	if f.err != nil {
		return nil, f.err
	}
	w := &widget{Code: in}
	w.ID = id
	return w, nil
}

func (f *fakeWidgetService) Delete(context.Context, uint) error { return f.err }

func (f *fakeWidgetService) DeleteSelection(_ context.Context, q listview.Query, sel listview.Selection) (int64, error) {
	f.lastQuery, f.lastSel = q, sel
	return f.deleted, f.err
}

type countingGuard struct {
	Open
	changed map[string]int
}

func (g *countingGuard) Changed(resource string) { g.changed[resource]++ }

func newWidgetRouter(svc *fakeWidgetService, guard Guard) *gin.Engine {
	r := gin.New()
	h := &CRUDHandler[widget, widgetRequest, string]{
		Resource: "widgets",
		Schema:   widgetSpec.Schema,
		Service:  svc,
		Convert: func(req *widgetRequest) (string, error) {
			if strings.HasPrefix(req.Code, "X") {
				return "", domain.Invalid("codes may not start with X")
			}
			return strings.TrimSpace(req.Code), nil
		},
		Guard: guard,
	}
	h.Register(r.Group("/api/v1"))
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCRUDHandler_List(t *testing.T) {
	svc := &fakeWidgetService{}
	w := serve(newWidgetRouter(svc, nil), http.MethodGet, "/api/v1/widgets?page=2&pageSize=5&kind=a&searchTerm=w", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if svc.lastQuery.Page != 2 || svc.lastQuery.PageSize != 5 || svc.lastQuery.Filter("kind") != "a" || svc.lastQuery.SearchTerm != "w" {
		t.Errorf("unexpected query %+v", svc.lastQuery)
	}
	var resp struct {
		Pagination Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Pagination.PageSize != 5 {
		t.Errorf("expected pageSize 5, got %d", resp.Pagination.PageSize)
	}
}

func TestCRUDHandler_CreateAndChange(t *testing.T) {
	svc := &fakeWidgetService{}
	guard := &countingGuard{changed: map[string]int{}}
	r := newWidgetRouter(svc, guard)

	w := serve(r, http.MethodPost, "/api/v1/widgets", `{"code":" W9 "}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	if len(svc.created) != 1 || svc.created[0] != "W9" {
		t.Errorf("unexpected created %v", svc.created)
	}
	if guard.changed["widgets"] != 1 {
		t.Errorf("expected 1 change, got %d", guard.changed["widgets"])
	}
}

func TestCRUDHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		svcErr error
		status int
	}{
		{"missing field", `{}`, nil, http.StatusBadRequest},
		{"convert error", `{"code":"X1"}`, nil, http.StatusBadRequest},
		{"conflict", `{"code":"W1"}`, domain.NewAppError(domain.CodeAlreadyExists, "widget already exists", nil), http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeWidgetService{err: tt.svcErr}
			guard := &countingGuard{changed: map[string]int{}}
			w := serve(newWidgetRouter(svc, guard), http.MethodPost, "/api/v1/widgets", tt.body)
			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if guard.changed["widgets"] != 0 {
				t.Error("failed mutation should not report a change")
			}
		})
	}
}

func TestCRUDHandler_GetInvalidID(t *testing.T) {
	w := serve(newWidgetRouter(&fakeWidgetService{}, nil), http.MethodGet, "/api/v1/widgets/abc", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCRUDHandler_UpdateAndDelete(t *testing.T) {
	svc := &fakeWidgetService{}
	guard := &countingGuard{changed: map[string]int{}}
	r := newWidgetRouter(svc, guard)

	if w := serve(r, http.MethodPut, "/api/v1/widgets/3", `{"code":"W3"}`); w.Code != http.StatusOK {
		t.Fatalf("update: expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w := serve(r, http.MethodDelete, "/api/v1/widgets/3", ""); w.Code != http.StatusOK {
		t.Fatalf("delete: expected status %d, got %d", http.StatusOK, w.Code)
	}
	if guard.changed["widgets"] != 2 {
		t.Errorf("expected 2 changes, got %d", guard.changed["widgets"])
	}
}

func TestCRUDHandler_BulkDelete(t *testing.T) {
	svc := &fakeWidgetService{deleted: 4}
	guard := &countingGuard{changed: map[string]int{}}
	body := `{"selection":{"mode":"all_except","ids":["2"]},"searchTerm":"w","filters":{"kind":"a"}}`

	w := serve(newWidgetRouter(svc, guard), http.MethodPost, "/api/v1/widgets/bulk-delete", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if !svc.lastSel.Equal(listview.AllExcept("2")) {
		t.Errorf("unexpected selection %v", svc.lastSel)
	}
	if svc.lastQuery.Filter("kind") != "a" || svc.lastQuery.SearchTerm != "w" {
		t.Errorf("unexpected query %+v", svc.lastQuery)
	}
	if !strings.Contains(w.Body.String(), `"deleted":4`) {
		t.Errorf("expected deleted count in %s", w.Body.String())
	}
	if guard.changed["widgets"] != 1 {
		t.Errorf("expected 1 change, got %d", guard.changed["widgets"])
	}
}

func TestCRUDHandler_GuardHandlersRun(t *testing.T) {
	guard := denyWrites{}
	r := newWidgetRouter(&fakeWidgetService{}, guard)

	if w := serve(r, http.MethodGet, "/api/v1/widgets", ""); w.Code != http.StatusOK {
		t.Errorf("read: expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w := serve(r, http.MethodPost, "/api/v1/widgets", `{"code":"W1"}`); w.Code != http.StatusForbidden {
		t.Errorf("write: expected status %d, got %d", http.StatusForbidden, w.Code)
	}
}

type denyWrites struct{ Open }

func (denyWrites) Write(string) []gin.HandlerFunc {
	return []gin.HandlerFunc{func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorBody(http.StatusForbidden, "permission denied"))
	}}
}
