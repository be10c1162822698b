package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type department struct {
	ID   uint   `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/v1", WithRetry(2, time.Millisecond, 5*time.Millisecond))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestResource_List(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/departments" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		for k, want := range map[string]string{
			"page": "4", "pageSize": "10", "orderBy": "name", "orderDirection": "ASC", "searchTerm": "ops", "status": "active",
		} {
			if got := q.Get(k); got != want {
				t.Errorf("expected %s=%q, got %q", k, want, got)
			}
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", got)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"code":       200,
			"message":    "success",
			"data":       []department{{ID: 21, Code: "D21", Name: "ops"}},
			"pagination": map[string]any{"total": 21, "page": 3, "pageSize": 10, "pageCount": 3},
		})
	})
	c.SetToken("tok")

	q := listview.Query{Page: 4, PageSize: 10, OrderBy: "name", OrderDirection: listview.Asc,
		SearchTerm: "ops", Filters: map[string]string{"status": "active"}}
	page, err := NewResource[department](c, "/departments").List(context.Background(), q)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := listview.Page[department]{
		Items:      []department{{ID: 21, Code: "D21", Name: "ops"}},
		Total:      21,
		Page:       3,
		PageSize:   10,
		TotalPages: 3,
	}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Errorf("page mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantCode   string
		wantMsg    string
		wantFields map[string]string
	}{
		{
			name:     "not found",
			status:   http.StatusNotFound,
			body:     `{"code":404,"error":"NOT_FOUND","message":"department not found","data":null}`,
			wantCode: CodeNotFound,
			wantMsg:  "department not found",
		},
		{
			name:       "validation",
			status:     http.StatusBadRequest,
			body:       `{"code":400,"error":"BAD_REQUEST","message":"validation error","errors":{"code":"required"}}`,
			wantCode:   CodeBadRequest,
			wantMsg:    "validation error",
			wantFields: map[string]string{"code": "required"},
		},
		{
			name:     "conflict",
			status:   http.StatusConflict,
			body:     `{"code":409,"error":"CONFLICT","message":"company already exists"}`,
			wantCode: CodeConflict,
			wantMsg:  "company already exists",
		},
		{
			name:     "plain text body falls back to status",
			status:   http.StatusForbidden,
			body:     `forbidden`,
			wantCode: CodeForbidden,
			wantMsg:  "Forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := NewResource[department](c, "/departments").Get(context.Background(), 1)
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if apiErr.Status != tt.status || apiErr.Code != tt.wantCode || apiErr.Message != tt.wantMsg {
				t.Errorf("expected %d %s %q, got %d %s %q", tt.status, tt.wantCode, tt.wantMsg, apiErr.Status, apiErr.Code, apiErr.Message)
			}
			if diff := cmp.Diff(tt.wantFields, apiErr.Fields); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
			if CodeOf(err) != tt.wantCode {
				t.Errorf("expected CodeOf %s, got %s", tt.wantCode, CodeOf(err))
			}
		})
	}
}

func TestClient_RetryPolicy(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []int
		wantAttempts int32
		wantCode     string
	}{
		{name: "internal error is final", statuses: []int{500, 200}, wantAttempts: 1, wantCode: CodeInternal},
		{name: "unavailable then ok", statuses: []int{503, 200}, wantAttempts: 2},
		{name: "rate limited then ok", statuses: []int{429, 429, 200}, wantAttempts: 3},
		{name: "bad gateway exhausts retries", statuses: []int{502, 502, 502, 502}, wantAttempts: 3, wantCode: CodeUnavailable},
		{name: "not found is final", statuses: []int{404, 200}, wantAttempts: 1, wantCode: CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				n := attempts.Add(1)
				status := tt.statuses[min(int(n), len(tt.statuses))-1]
				if status == http.StatusOK {
					writeJSON(w, status, map[string]any{"code": 200, "message": "success", "data": department{ID: 1}})
					return
				}
				w.WriteHeader(status)
			})

			_, err := NewResource[department](c, "/departments").Get(context.Background(), 1)
			if got := attempts.Load(); got != tt.wantAttempts {
				t.Errorf("expected %d attempts, got %d", tt.wantAttempts, got)
			}
			if CodeOf(err) != tt.wantCode {
				t.Errorf("expected code %q, got %q (err %v)", tt.wantCode, CodeOf(err), err)
			}
		})
	}
}

func TestClient_WritesAreNotReplayed(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []int
		wantAttempts int32
		wantCode     string
	}{
		{name: "unavailable is final", statuses: []int{503, 201}, wantAttempts: 1, wantCode: CodeUnavailable},
		{name: "gateway timeout is final", statuses: []int{504, 201}, wantAttempts: 1, wantCode: CodeUnavailable},
		{name: "rate limited then created", statuses: []int{429, 201}, wantAttempts: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method %s", r.Method)
				}
				n := attempts.Add(1)
				status := tt.statuses[min(int(n), len(tt.statuses))-1]
				if status == http.StatusCreated {
					writeJSON(w, status, map[string]any{"code": 201, "message": "created", "data": department{ID: 9}})
					return
				}
				w.WriteHeader(status)
			})

			_, err := NewResource[department](c, "/departments").Create(context.Background(), department{Code: "QA"})
			if got := attempts.Load(); got != tt.wantAttempts {
				t.Errorf("expected %d attempts, got %d", tt.wantAttempts, got)
			}
			if CodeOf(err) != tt.wantCode {
				t.Errorf("expected code %q, got %q (err %v)", tt.wantCode, CodeOf(err), err)
			}
		})
	}
}

func TestCheckRetry_TransportErrors(t *testing.T) {
	dial := &url.Error{Op: "Post", URL: "http://127.0.0.1:1", Err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}}
	dropped := &url.Error{Op: "Post", URL: "http://127.0.0.1:1", Err: io.ErrUnexpectedEOF}
	write := withoutReplay(context.Background())

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want bool
	}{
		{"read retries a dropped reply", context.Background(), dropped, true},
		{"write retries a refused dial", write, dial, true},
		{"write does not retry a dropped reply", write, dropped, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checkRetry(tt.ctx, nil, tt.err)
			if err != nil {
				t.Fatalf("checkRetry() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("checkRetry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdempotent(t *testing.T) {
	for method, want := range map[string]bool{
		http.MethodGet: true, http.MethodPut: true, http.MethodDelete: true,
		http.MethodPost: false, http.MethodPatch: false,
	} {
		if got := idempotent(method); got != want {
			t.Errorf("idempotent(%s) = %v, want %v", method, got, want)
		}
	}
}

func TestResource_DeleteSendsSelection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/employees/bulk-delete" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Selection  listview.Selection `json:"selection"`
			SearchTerm string             `json:"searchTerm"`
			Filters    map[string]string  `json:"filters"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		if !body.Selection.Equal(listview.AllExcept("3")) {
			t.Errorf("expected all_except[3], got %v", body.Selection)
		}
		if body.SearchTerm != "ann" || body.Filters["departmentId"] != "2" {
			t.Errorf("unexpected filter %q %v", body.SearchTerm, body.Filters)
		}
		writeJSON(w, http.StatusOK, map[string]any{"code": 200, "message": "success", "data": map[string]int{"deleted": 6}})
	})

	q := listview.Query{Page: 1, PageSize: 10, SearchTerm: "ann", Filters: map[string]string{"departmentId": "2"}}
	n, err := NewResource[department](c, "/employees").Delete(context.Background(), listview.AllExcept("3"), q)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n != 6 {
		t.Errorf("expected 6 deleted, got %d", n)
	}
}

func TestClient_LoginStoresToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["account"] != "admin" || body["password"] != "secret" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 401, "error": "UNAUTHORIZED", "message": "invalid credentials"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"code": 200, "data": map[string]any{"token": "jwt-1"}})
		default:
			if r.Header.Get("Authorization") != "Bearer jwt-1" {
				writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 401, "error": "UNAUTHORIZED", "message": "missing token"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"code": 200, "data": department{ID: 1}})
		}
	})

	if _, err := c.Login(context.Background(), "admin", "wrong"); !IsUnauthorized(err) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if c.Token() != "" {
		t.Error("failed login must not set a token")
	}

	s, err := c.Login(context.Background(), "admin", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s.Token != "jwt-1" || c.Token() != "jwt-1" {
		t.Errorf("expected token jwt-1, got session=%q client=%q", s.Token, c.Token())
	}
	if _, err := NewResource[department](c, "/departments").Get(context.Background(), 1); err != nil {
		t.Errorf("authenticated Get: %v", err)
	}
}

func TestClient_Upload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "logo.png" || string(data) != "png-bytes" {
			t.Errorf("unexpected upload %q %q", hdr.Filename, data)
		}
		writeJSON(w, http.StatusOK, map[string]any{"code": 200, "data": map[string]any{
			"url": "/files/company/logo?v=1", "content_type": "image/png", "size": len(data),
		}})
	})

	out, err := c.Upload(context.Background(), "/company/logo", "logo.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	want := Uploaded{URL: "/files/company/logo?v=1", ContentType: "image/png", Size: 9}
	if out != want {
		t.Errorf("expected %+v, got %+v", want, out)
	}
}

func TestCursor(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("after") != "abc" || r.URL.Query().Get("limit") != "2" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, map[string]any{"code": 200, "data": map[string]any{
			"items": []department{{ID: 3}, {ID: 4}}, "nextCursor": "def", "hasMore": true,
		}})
	})

	page, err := Cursor[department](context.Background(), c, "/materials/1/purchases", "abc", 2)
	if err != nil {
		t.Fatalf("Cursor: %v", err)
	}
	if len(page.Items) != 2 || page.NextCursor != "def" || !page.HasMore {
		t.Errorf("unexpected cursor page %+v", page)
	}
}
