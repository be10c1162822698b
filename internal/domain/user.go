package domain

import (
	"context"
	"time"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
)

// User is an account that can sign in. Roles are held by the RBAC store and
// filled in by the service.
type User struct {
	BaseModel
	Account      string    `gorm:"size:100;uniqueIndex;not null" json:"account"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	EmployeeID   *uint     `gorm:"index" json:"employee_id"`
	Employee     *Employee `gorm:"constraint:OnDelete:SET NULL" json:"employee,omitempty"`
	Roles        []string  `gorm:"-" json:"roles"`
}

type UserInput struct {
	Account    string
	Name       string
	Email      string
	EmployeeID *uint
	// Password is only applied when non-empty.
	Password string
	// Roles replaces the user's roles when non-nil.
	Roles []string
}

var UserSchema = listview.Schema{
	Sortable:         []string{"id", "account", "name", "created_at"},
	DefaultOrderBy:   "id",
	DefaultDirection: listview.Desc,
	DefaultPageSize:  10,
	Filters:          []string{"role"},
}

type UserRepository interface {
	Repository[User]
	GetByAccount(ctx context.Context, account string) (*User, error)
	// SelectedIDs resolves a selection to the ids DeleteSelection would remove.
	SelectedIDs(ctx context.Context, q listview.Query, sel listview.Selection) ([]uint, error)
}

type UserService interface {
	CRUDService[User, UserInput]
	// SetRoles replaces the roles of a user.
	SetRoles(ctx context.Context, id uint, roles []string) (*User, error)
}

// Role is a named set of permissions, keyed by resource.
type Role struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Permissions map[string][]string `json:"permissions"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type RoleInput struct {
	ID          string
	Name        string
	Description string
	// Permissions replaces the role's permissions when non-nil.
	Permissions map[string][]string
}

var RoleSchema = listview.Schema{
	Sortable:         []string{"id", "name", "created_at"},
	DefaultOrderBy:   "created_at",
	DefaultDirection: listview.Desc,
	DefaultPageSize:  10,
}

// RoleService manages roles. Role ids are strings, so it does not share
// CRUDService.
type RoleService interface {
	Create(ctx context.Context, in RoleInput) (*Role, error)
	Get(ctx context.Context, id string) (*Role, error)
	List(ctx context.Context, q listview.Query) (*PageResult[Role], error)
	Update(ctx context.Context, id string, in RoleInput) (*Role, error)
	Delete(ctx context.Context, id string) error
	DeleteSelection(ctx context.Context, q listview.Query, sel listview.Selection) (int64, error)
	// SetPermissions replaces the permissions of a role.
	SetPermissions(ctx context.Context, id string, perms map[string][]string) (*Role, error)
}
