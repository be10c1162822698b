package role

import (
	"strings"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
)

// CreateRoleRequest is the body of POST /roles.
type CreateRoleRequest struct {
	ID          string              `json:"id" binding:"required,max=128"`
	Name        string              `json:"name" binding:"required,max=100"`
	Description string              `json:"description" binding:"max=500"`
	Permissions map[string][]string `json:"permissions"`
}

// UpdateRoleRequest is the body of PUT /roles/:id.
type UpdateRoleRequest struct {
	Name        string              `json:"name" binding:"required,max=100"`
	Description string              `json:"description" binding:"max=500"`
	Permissions map[string][]string `json:"permissions"`
}

// PermissionsRequest is the body of PUT /roles/:id/permissions.
type PermissionsRequest struct {
	Permissions map[string][]string `json:"permissions" binding:"required"`
}

func normalize(in domain.RoleInput) domain.RoleInput {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in
}
