package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"
	"github.com/simp-lee/jwt"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

func setupRouter(t *testing.T) (*gin.Engine, fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	jwtSvc, err := jwt.New(testSecret)
	if err != nil {
		t.Fatalf("jwt.New() error = %v", err)
	}
	t.Cleanup(jwtSvc.Close)

	authenticate := ginx.NewChain().WithErrorFormat(pkg.ErrorBody).Use(ginx.Auth(jwtSvc)).Build()
	r := gin.New()
	NewModule(NewHandler(NewService(jwtSvc, f.repo, f.users, time.Hour)), authenticate).
		RegisterRoutes(r.Group("/api/v1"))
	return r, f
}

func request(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthFlow(t *testing.T) {
	r, _ := setupRouter(t)

	w := request(r, http.MethodPost, "/api/v1/auth/register", `{"account":"alice","name":"Alice","password":"secret1234"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "secret1234") {
		t.Errorf("register response leaks password: %s", w.Body.String())
	}

	w = request(r, http.MethodPost, "/api/v1/auth/login", `{"account":"alice","password":"secret1234"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var login struct {
		Data TokenResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if login.Data.Token == "" || login.Data.ExpiresAt == 0 {
		t.Fatalf("unexpected token response %+v", login.Data)
	}

	w = request(r, http.MethodGet, "/api/v1/auth/me", "", login.Data.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var me struct {
		Data domain.User `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &me)
	if me.Data.Account != "alice" {
		t.Errorf("me: unexpected user %+v", me.Data)
	}

	if w := request(r, http.MethodPost, "/api/v1/auth/logout", "", login.Data.Token); w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := request(r, http.MethodGet, "/api/v1/auth/me", "", login.Data.Token); w.Code != http.StatusUnauthorized {
		t.Errorf("me after logout: expected 401, got %d", w.Code)
	}
}

func TestAuthErrors(t *testing.T) {
	r, f := setupRouter(t)
	f.seedUser(t, "alice", "secret1234")

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		token    string
		wantCode int
		wantErr  string
	}{
		{"login wrong password", http.MethodPost, "/api/v1/auth/login", `{"account":"alice","password":"wrong-pass"}`, "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"login unknown account", http.MethodPost, "/api/v1/auth/login", `{"account":"bob","password":"secret1234"}`, "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"login missing account", http.MethodPost, "/api/v1/auth/login", `{"password":"secret1234"}`, "", http.StatusBadRequest, "BAD_REQUEST"},
		{"register short password", http.MethodPost, "/api/v1/auth/register", `{"account":"bob","name":"Bob","password":"short"}`, "", http.StatusBadRequest, "BAD_REQUEST"},
		{"register duplicate", http.MethodPost, "/api/v1/auth/register", `{"account":"alice","name":"A","password":"secret1234"}`, "", http.StatusConflict, "CONFLICT"},
		{"me without token", http.MethodGet, "/api/v1/auth/me", "", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"me with bad token", http.MethodGet, "/api/v1/auth/me", "", "not-a-jwt", http.StatusUnauthorized, "UNAUTHORIZED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(r, tt.method, tt.path, tt.body, tt.token)
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			var resp pkg.Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error != tt.wantErr {
				t.Errorf("error code = %q; want %q", resp.Error, tt.wantErr)
			}
		})
	}
}

func TestRegisterRoutes(t *testing.T) {
	r, _ := setupRouter(t)
	want := map[string]bool{
		"POST /api/v1/auth/login":    false,
		"POST /api/v1/auth/register": false,
		"GET /api/v1/auth/me":        false,
		"POST /api/v1/auth/logout":   false,
	}
	for _, route := range r.Routes() {
		key := route.Method + " " + route.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for key, found := range want {
		if !found {
			t.Errorf("route %s not registered", key)
		}
	}
}

func TestNewModule_PanicsOnNilHandler(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewModule(nil)
}
