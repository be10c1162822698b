package role

import (
	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// Resource is the route and permission name of the module.
const Resource = "roles"

// RoleModule serves /roles.
type RoleModule struct {
	handler *RoleHandler
	guard   pkg.Guard
}

// NewModule creates a RoleModule. Panics if svc is nil.
func NewModule(svc domain.RoleService, guard pkg.Guard) *RoleModule {
	if svc == nil {
		panic("role.NewModule: service must not be nil")
	}
	if guard == nil {
		guard = pkg.Open{}
	}
	return &RoleModule{handler: &RoleHandler{svc: svc, guard: guard}, guard: guard}
}

// RegisterRoutes registers the role API routes.
func (m *RoleModule) RegisterRoutes(api *gin.RouterGroup) {
	read, write := m.guard.Read(Resource), m.guard.Write(Resource)
	g := api.Group("/" + Resource)
	g.GET("", pkg.Chain(read, m.handler.List)...)
	g.GET("/:id", pkg.Chain(read, m.handler.Get)...)
	g.POST("", pkg.Chain(write, m.handler.Create)...)
	g.PUT("/:id", pkg.Chain(write, m.handler.Update)...)
	g.DELETE("/:id", pkg.Chain(write, m.handler.Delete)...)
	g.POST("/bulk-delete", pkg.Chain(write, m.handler.BulkDelete)...)
	g.PUT("/:id/permissions", pkg.Chain(write, m.handler.SetPermissions)...)
}
