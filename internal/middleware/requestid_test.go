package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
)

var generatedID = regexp.MustCompile(`^[0-9a-f]{32}$`)

func setupRequestIDRouter(trustUpstream bool) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(trustUpstream))
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	r.GET("/ctx", func(c *gin.Context) {
		c.String(http.StatusOK, findAttrValue(logger.FromContext(c.Request.Context()), "request_id"))
	})
	return r
}

func findAttrValue(attrs []slog.Attr, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value.String()
		}
	}
	return ""
}

func serve(r *gin.Engine, path, incoming string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if incoming != "" {
		req.Header.Set("X-Request-ID", incoming)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_Generates(t *testing.T) {
	w := serve(setupRequestIDRouter(false), "/test", "")

	id := w.Body.String()
	if !generatedID.MatchString(id) {
		t.Fatalf("request id = %q, want 32 hex chars", id)
	}
	if got := w.Header().Get("X-Request-ID"); got != id {
		t.Errorf("header = %q, want %q", got, id)
	}
}

func TestRequestID_InjectedIntoContext(t *testing.T) {
	w := serve(setupRequestIDRouter(false), "/ctx", "")
	if !generatedID.MatchString(w.Body.String()) {
		t.Fatalf("context request id = %q", w.Body.String())
	}
	if w.Body.String() != w.Header().Get("X-Request-ID") {
		t.Errorf("context id %q differs from header %q", w.Body.String(), w.Header().Get("X-Request-ID"))
	}
}

func TestRequestID_Upstream(t *testing.T) {
	tests := []struct {
		name     string
		trust    bool
		incoming string
		wantSame bool
	}{
		{"untrusted upstream replaced", false, "upstream-123", false},
		{"trusted upstream reused", true, "upstream-123", true},
		{"trusted but malformed replaced", true, "bad id with spaces", false},
		{"trusted but too long replaced", true, strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(setupRequestIDRouter(tt.trust), "/test", tt.incoming)
			got := w.Body.String()
			if tt.wantSame {
				if got != tt.incoming {
					t.Errorf("request id = %q, want %q", got, tt.incoming)
				}
				return
			}
			if !generatedID.MatchString(got) {
				t.Errorf("request id = %q, want a generated id", got)
			}
		})
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	r := gin.New()
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	if w := serve(r, "/test", ""); w.Body.String() != "" {
		t.Errorf("GetRequestID() = %q, want empty", w.Body.String())
	}
}
