package user

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// roleMembers lists the users holding a role.
type roleMembers interface {
	GetRoleUsers(roleID string) ([]string, error)
}

type userRepository struct {
	*pkg.Repo[domain.User]
}

// NewUserRepository creates a UserRepository backed by the given GORM database.
// The role filter of the list view is resolved through members.
func NewUserRepository(db *gorm.DB, members roleMembers) domain.UserRepository {
	spec := pkg.ListSpec{
		Schema: domain.UserSchema,
		Search: []string{"account", "name", "email"},
		Filters: map[string]pkg.FilterField{
			"role": {Apply: roleFilter(members)},
		},
	}
	return &userRepository{Repo: pkg.NewRepo[domain.User](db, "user", spec, "Employee")}
}

func roleFilter(members roleMembers) func(db *gorm.DB, value string) *gorm.DB {
	return func(db *gorm.DB, value string) *gorm.DB {
		raw, err := members.GetRoleUsers(value)
		if err != nil {
			_ = db.AddError(pkg.MapRBACError(err))
			return db
		}
		ids := make([]uint, 0, len(raw))
		for _, s := range raw {
			if id, err := strconv.ParseUint(s, 10, 64); err == nil {
				ids = append(ids, uint(id))
			}
		}
		if len(ids) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where("id IN ?", ids)
	}
}

// GetByAccount retrieves a user by sign-in account.
func (r *userRepository) GetByAccount(ctx context.Context, account string) (*domain.User, error) {
	var u domain.User
	if err := r.DB(ctx).Where("account = ?", account).First(&u).Error; err != nil {
		return nil, pkg.MapError(err, r.Entity())
	}
	return &u, nil
}
