package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/simp-lee/rbac"
	"gorm.io/gorm"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/config"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/module/user"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// AdminRole holds every permission.
const AdminRole = "admin"

// Seed creates the admin role and the admin account unless they exist. An
// empty configured password is replaced by a generated one, which is
// written to out.
func Seed(ctx context.Context, cfg *config.Config, db *gorm.DB, perms rbac.Service, out io.Writer) error {
	if cfg == nil || db == nil || perms == nil {
		return errors.New("seed: config, database and rbac are required")
	}

	exists, err := perms.RoleExists(AdminRole)
	if err != nil {
		return fmt.Errorf("seed: %w", pkg.MapRBACError(err))
	}
	if !exists {
		if err := perms.CreateRole(AdminRole, "Administrator", "full access"); err != nil {
			return fmt.Errorf("seed: create role: %w", pkg.MapRBACError(err))
		}
		if err := perms.AddRolePermissions(AdminRole, "*", []string{"*"}); err != nil {
			return fmt.Errorf("seed: grant role: %w", pkg.MapRBACError(err))
		}
	}

	account := strings.ToLower(strings.TrimSpace(cfg.Auth.Admin.Account))
	if account == "" {
		account = "admin"
	}
	repo := user.NewUserRepository(db, perms)
	if _, err := repo.GetByAccount(ctx, account); err == nil {
		return nil
	} else if !domain.IsNotFound(err) {
		return fmt.Errorf("seed: %w", err)
	}

	password := cfg.Auth.Admin.Password
	generated := password == ""
	if generated {
		password = uuid.NewString()
	}
	svc := user.NewUserService(repo, perms)
	if _, err := svc.Create(ctx, domain.UserInput{
		Account:  account,
		Name:     "Administrator",
		Password: password,
		Roles:    []string{AdminRole},
	}); err != nil {
		return fmt.Errorf("seed: create admin: %w", err)
	}
	if generated && out != nil {
		fmt.Fprintf(out, "created account %q with password %s\n", account, password)
	}
	return nil
}
