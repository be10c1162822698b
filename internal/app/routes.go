package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"
	"github.com/simp-lee/jwt"
	"gorm.io/gorm"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules []Module
	DB      *gorm.DB
	// JWT guards /api/v1 except PublicPaths; nil leaves the API open.
	JWT         jwt.Service
	PublicPaths []string
	// FilesDir is served under FilesURL when non-empty.
	FilesDir string
	FilesURL string
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}

	r.GET("/health", healthHandler(deps.DB))
	if deps.FilesDir != "" {
		if deps.FilesURL == "" || deps.FilesURL[0] != '/' {
			return fmt.Errorf("invalid files url %q", deps.FilesURL)
		}
		r.Static(deps.FilesURL, deps.FilesDir)
	}

	api := r.Group("/api/v1")
	if deps.JWT != nil {
		api.Use(authenticate(deps.JWT, deps.PublicPaths))
	}
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(api)
	}

	r.HandleMethodNotAllowed = true
	r.NoRoute(notFoundHandler)
	r.NoMethod(methodNotAllowedHandler)
	return nil
}

// authenticate requires a valid bearer token on every path but public.
func authenticate(svc jwt.Service, public []string) gin.HandlerFunc {
	return ginx.NewChain().
		WithErrorFormat(pkg.ErrorBody).
		Unless(ginx.PathIs(public...), ginx.Auth(svc)).
		Build()
}

// healthHandler returns a handler that pings the database and reports status.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "ok"
		status := "ok"
		code := http.StatusOK

		if err := pingDB(c.Request.Context(), db); err != nil {
			dbStatus = "error"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"database": dbStatus,
			},
		})
	}
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database is nil")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
