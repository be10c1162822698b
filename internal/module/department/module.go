package department

import (
	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// Resource is the route and permission name of the module.
const Resource = "departments"

// DepartmentModule serves /departments.
type DepartmentModule struct {
	handler *pkg.CRUDHandler[domain.Department, DepartmentRequest, domain.DepartmentInput]
}

// NewModule creates a DepartmentModule. Panics if svc is nil.
func NewModule(svc domain.DepartmentService, guard pkg.Guard) *DepartmentModule {
	if svc == nil {
		panic("department.NewModule: service must not be nil")
	}
	return &DepartmentModule{handler: &pkg.CRUDHandler[domain.Department, DepartmentRequest, domain.DepartmentInput]{
		Resource: Resource,
		Schema:   domain.DepartmentSchema,
		Service:  svc,
		Convert:  toInput,
		Guard:    guard,
	}}
}

// RegisterRoutes registers the department API routes.
func (m *DepartmentModule) RegisterRoutes(api *gin.RouterGroup) {
	m.handler.Register(api)
}
