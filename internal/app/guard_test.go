package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	shardedcache "github.com/simp-lee/cache"
	"github.com/simp-lee/ginx"
	"github.com/simp-lee/rbac"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

func guardedRouter(g pkg.Guard, calls *int) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			ginx.SetUserID(c, id)
		}
		c.Next()
	})
	r.GET("/things", pkg.Chain(g.Read("things"), func(c *gin.Context) {
		*calls++
		c.JSON(http.StatusOK, gin.H{"calls": *calls})
	})...)
	r.POST("/things", pkg.Chain(g.Write("things"), func(c *gin.Context) {
		g.Changed("things")
		c.Status(http.StatusCreated)
	})...)
	return r
}

func doGuarded(r *gin.Engine, method, user string) int {
	req := httptest.NewRequest(method, "/things", nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestNewGuard_OpenWithoutParts(t *testing.T) {
	if _, ok := newGuard(nil, nil).(pkg.Open); !ok {
		t.Fatal("newGuard(nil, nil) should be the open guard")
	}
}

func TestGuard_ResponseCacheClearedOnChange(t *testing.T) {
	cache := shardedcache.NewCache(shardedcache.Options{DefaultExpiration: time.Minute})
	t.Cleanup(cache.Close)

	calls := 0
	r := guardedRouter(newGuard(nil, cache), &calls)

	doGuarded(r, http.MethodGet, "")
	doGuarded(r, http.MethodGet, "")
	if calls != 1 {
		t.Fatalf("handler calls = %d after two reads, want 1", calls)
	}

	if code := doGuarded(r, http.MethodPost, ""); code != http.StatusCreated {
		t.Fatalf("POST status = %d, want 201", code)
	}
	doGuarded(r, http.MethodGet, "")
	if calls != 2 {
		t.Fatalf("handler calls = %d after a change, want 2", calls)
	}
}

func TestGuard_Permissions(t *testing.T) {
	perms, err := rbac.New(rbac.WithMemoryStorage())
	if err != nil {
		t.Fatalf("rbac.New: %v", err)
	}
	t.Cleanup(func() { _ = perms.Close() })

	if err := perms.CreateRole("viewer", "Viewer", ""); err != nil {
		t.Fatal(err)
	}
	if err := perms.AddRolePermission("viewer", "things", pkg.ActionRead); err != nil {
		t.Fatal(err)
	}
	if err := perms.AssignRole("1", "viewer"); err != nil {
		t.Fatal(err)
	}

	calls := 0
	r := guardedRouter(newGuard(perms, nil), &calls)

	tests := []struct {
		name   string
		method string
		user   string
		want   int
	}{
		{"viewer reads", http.MethodGet, "1", http.StatusOK},
		{"viewer cannot write", http.MethodPost, "1", http.StatusForbidden},
		{"stranger cannot read", http.MethodGet, "2", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := doGuarded(r, tt.method, tt.user); got != tt.want {
				t.Fatalf("status = %d, want %d", got, tt.want)
			}
		})
	}
}
