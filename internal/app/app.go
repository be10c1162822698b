package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/config"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/middleware"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine     *gin.Engine
	db         *gorm.DB
	logger     *logger.Logger
	cfg        *config.Config
	components *Components
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the database, the shared components (RBAC store, token
// service, response cache, object store), every module and the routes.
// Tables are migrated automatically in debug mode only.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}

	success := false

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if !success {
			closeDB(db)
		}
	}()

	if cfg.Server.Mode == gin.DebugMode {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Info("auto migration completed")
	}

	components, err := NewComponents(context.Background(), cfg, db)
	if err != nil {
		return nil, err
	}
	defer func() {
		if !success {
			components.Close()
		}
	}()

	engine, err := NewEngine(cfg, db, components, log.Logger)
	if err != nil {
		return nil, err
	}

	success = true
	return &App{
		engine:     engine,
		db:         db,
		logger:     log,
		cfg:        cfg,
		components: components,
	}, nil
}

// NewEngine builds the gin engine: global middleware, modules and routes.
func NewEngine(cfg *config.Config, db *gorm.DB, components *Components, log *slog.Logger) (*gin.Engine, error) {
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	engine.Use(
		middleware.Recovery(log),
		middleware.RequestID(false),
		middleware.Logger(log),
		middleware.CORS(resolveCORSConfig(cfg.Server.Mode, &cfg.Server.CORS)),
	)
	if rl := cfg.Server.RateLimit; rl.Enabled {
		engine.Use(ginx.NewChain().
			WithErrorFormat(pkg.ErrorBody).
			Use(ginx.RateLimit(effectiveRateLimitRPS(rl.RPS), rl.Burst)).
			Build())
	}
	if timeout := config.Duration(cfg.Server.Timeout, 0); timeout > 0 {
		engine.Use(ginx.NewChain().
			WithErrorFormat(pkg.ErrorBody).
			Use(ginx.Timeout(ginx.WithTimeout(timeout))).
			Build())
	}

	deps := &RouteDeps{
		Modules:     BuildModules(cfg, db, components, log),
		DB:          db,
		JWT:         components.JWT,
		PublicPaths: cfg.Auth.PublicPaths,
	}
	if cfg.Storage.Driver == "" || cfg.Storage.Driver == "local" {
		deps.FilesDir = cfg.Storage.Local.Dir
		deps.FilesURL = cfg.Storage.Local.BaseURL
	}
	if err := RegisterRoutes(engine, deps); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}
	return engine, nil
}

func resolveCORSConfig(mode string, cfg *config.CORSConfig) middleware.CORSConfig {
	return middleware.ResolveCORSConfig(mode, middleware.CORSConfig{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           config.Duration(cfg.MaxAge, 0),
	})
}

// effectiveRateLimitRPS rounds fractional rates up so that a configured
// rate below one still admits requests.
func effectiveRateLimitRPS(rps float64) int {
	n := int(math.Ceil(rps))
	if n < 1 {
		return 1
	}
	return n
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

func closeDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout, then releases the
// components and closes the database connection.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.cfg.Server.RateLimit.Enabled {
		ginx.CleanupRateLimiters()
	}
	a.components.Close()

	if a.db != nil {
		if err := closeDB(a.db); err != nil {
			log.Error("database close error", slog.Any("error", err))
		} else {
			log.Info("database connection closed")
		}
	}

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}
	return runErr
}
