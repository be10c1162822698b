package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	shardedcache "github.com/simp-lee/cache"
	"github.com/simp-lee/jwt"
	"github.com/simp-lee/rbac"
	"gorm.io/gorm"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/config"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/module/auth"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/module/company"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/module/customer"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/module/department"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/module/employee"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/module/material"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/module/project"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/module/role"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/module/user"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/storage"
)

// Models lists every table owned by the application.
var Models = []any{
	&domain.Department{},
	&domain.Employee{},
	&domain.Customer{},
	&domain.Project{},
	&domain.Material{},
	&domain.Purchase{},
	&domain.User{},
	&domain.Company{},
}

// Migrate creates or updates the application tables.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("database is nil")
	}
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Components are the long-lived services shared by the modules.
type Components struct {
	// RBAC always holds roles; permissions are only enforced when
	// auth.rbac.enabled is set.
	RBAC rbac.Service
	// JWT is nil when auth is disabled.
	JWT jwt.Service
	// Cache is nil when response caching is disabled.
	Cache shardedcache.CacheInterface
	Store storage.Store
}

// NewComponents builds the RBAC store, token service, response cache and
// object store described by cfg.
func NewComponents(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Components, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	c := &Components{}
	success := false
	defer func() {
		if !success {
			c.Close()
		}
	}()

	var err error
	if c.RBAC, err = newRBAC(cfg.Auth.RBAC, db); err != nil {
		return nil, fmt.Errorf("setup rbac: %w", err)
	}
	if cfg.Auth.Enabled {
		if c.JWT, err = jwt.New(cfg.Auth.JWTSecret); err != nil {
			return nil, fmt.Errorf("setup jwt: %w", err)
		}
	}
	if cfg.Server.Cache.Enabled {
		c.Cache = shardedcache.NewCache(shardedcache.Options{
			MaxSize:           cfg.Server.Cache.MaxSize,
			DefaultExpiration: config.Duration(cfg.Server.Cache.TTL, time.Minute),
			CleanupInterval:   time.Minute,
		})
	}
	if c.Store, err = newStore(ctx, cfg.Storage); err != nil {
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	success = true
	return c, nil
}

// Close releases the background workers of the components.
func (c *Components) Close() {
	if c == nil {
		return
	}
	if c.Cache != nil {
		c.Cache.Close()
	}
	if c.JWT != nil {
		c.JWT.Close()
	}
	if c.RBAC != nil {
		if err := c.RBAC.Close(); err != nil {
			slog.Error("rbac close error", slog.Any("error", err))
		}
	}
}

func newRBAC(cfg config.RBACConfig, db *gorm.DB) (rbac.Service, error) {
	if cfg.Storage == "" || cfg.Storage == "memory" {
		return rbac.New(rbac.WithMemoryStorage())
	}
	if db == nil {
		return nil, fmt.Errorf("rbac storage %q needs a database", cfg.Storage)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	switch cfg.Storage {
	case "sql":
		return rbac.New(rbac.WithSQLStorage(sqlDB, cfg.TablePrefix))
	case "cached":
		return rbac.New(rbac.WithCachedStorage(sqlDB, &rbac.CacheConfig{
			RoleTTL:         config.Duration(cfg.Cache.RoleTTL, 10*time.Minute),
			UserRoleTTL:     config.Duration(cfg.Cache.UserRoleTTL, 5*time.Minute),
			PermTTL:         config.Duration(cfg.Cache.PermissionTTL, 5*time.Minute),
			MaxRoles:        cfg.Cache.MaxRoleEntries,
			MaxUserRoles:    cfg.Cache.MaxUserEntries,
			MaxUserPerms:    cfg.Cache.MaxPermissionEntries,
			CleanupInterval: time.Minute,
		}, cfg.TablePrefix))
	default:
		return nil, fmt.Errorf("unknown rbac storage %q", cfg.Storage)
	}
}

func newStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case "", "local":
		return storage.NewLocalStore(cfg.Local.Dir, cfg.Local.BaseURL)
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:     cfg.S3.Endpoint,
			Region:       cfg.S3.Region,
			Bucket:       cfg.S3.Bucket,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			UsePathStyle: cfg.S3.UsePathStyle,
			PublicURL:    cfg.S3.PublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// BuildModules wires repository, service and handler of every module.
func BuildModules(cfg *config.Config, db *gorm.DB, c *Components, log *slog.Logger) []Module {
	var perms rbac.Service
	if cfg.Auth.Enabled && cfg.Auth.RBAC.Enabled {
		perms = c.RBAC
	}
	guard := newGuard(perms, c.Cache)
	uploader := storage.NewUploader(c.Store, cfg.Storage.MaxUploadBytes(), log, storage.AllowedImageTypes...)

	userRepo := user.NewUserRepository(db, c.RBAC)
	userSvc := user.NewUserService(userRepo, c.RBAC)

	modules := []Module{
		department.NewModule(department.NewDepartmentService(department.NewDepartmentRepository(db)), guard),
		employee.NewModule(employee.NewEmployeeService(employee.NewEmployeeRepository(db)), uploader, guard),
		customer.NewModule(customer.NewCustomerService(customer.NewCustomerRepository(db)), guard),
		project.NewModule(project.NewProjectService(project.NewProjectRepository(db)), guard),
		material.NewModule(material.NewMaterialService(material.NewMaterialRepository(db)), guard),
		user.NewModule(userSvc, guard),
		role.NewModule(role.NewRoleService(c.RBAC), guard),
		company.NewModule(company.NewCompanyService(company.NewCompanyRepository(db)), uploader, guard),
	}
	if c.JWT != nil {
		expiry := config.Duration(cfg.Auth.TokenExpiry, 24*time.Hour)
		authSvc := auth.NewService(c.JWT, userRepo, userSvc, expiry)
		modules = append(modules, auth.NewModule(auth.NewHandler(authSvc)))
	}
	return modules
}
