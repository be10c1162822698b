package user

import (
	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// RolesHandler serves PUT /users/:id/roles.
type RolesHandler struct {
	svc   domain.UserService
	guard pkg.Guard
}

// Set replaces the roles of a user.
func (h *RolesHandler) Set(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	var req RolesRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	u, err := h.svc.SetRoles(c.Request.Context(), id, req.Roles)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	h.guard.Changed(Resource)
	pkg.Success(c, u)
}
