package role

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// RoleHandler serves /roles. Role ids are strings, so it does not use the
// generic CRUD handler.
type RoleHandler struct {
	svc   domain.RoleService
	guard pkg.Guard
}

// List handles GET /roles.
func (h *RoleHandler) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), pkg.ParseQuery(c, domain.RoleSchema))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, page)
}

// Get handles GET /roles/:id.
func (h *RoleHandler) Get(c *gin.Context) {
	r, err := h.svc.Get(c.Request.Context(), roleID(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, r)
}

// Create handles POST /roles.
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	r, err := h.svc.Create(c.Request.Context(), domain.RoleInput{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	h.guard.Changed(Resource)
	pkg.Created(c, r)
}

// Update handles PUT /roles/:id.
func (h *RoleHandler) Update(c *gin.Context) {
	var req UpdateRoleRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	r, err := h.svc.Update(c.Request.Context(), roleID(c), domain.RoleInput{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	h.guard.Changed(Resource)
	pkg.Success(c, r)
}

// Delete handles DELETE /roles/:id.
func (h *RoleHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), roleID(c)); err != nil {
		pkg.Error(c, err)
		return
	}
	h.guard.Changed(Resource)
	pkg.Success(c, nil)
}

// BulkDelete handles POST /roles/bulk-delete.
func (h *RoleHandler) BulkDelete(c *gin.Context) {
	q, sel, ok := pkg.BindBulkDelete(c, domain.RoleSchema)
	if !ok {
		return
	}
	n, err := h.svc.DeleteSelection(c.Request.Context(), q, sel)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	if n > 0 {
		h.guard.Changed(Resource)
	}
	pkg.Success(c, gin.H{"deleted": n})
}

// SetPermissions handles PUT /roles/:id/permissions.
func (h *RoleHandler) SetPermissions(c *gin.Context) {
	var req PermissionsRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	r, err := h.svc.SetPermissions(c.Request.Context(), roleID(c), req.Permissions)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	h.guard.Changed(Resource)
	pkg.Success(c, r)
}

func roleID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("id"))
}
