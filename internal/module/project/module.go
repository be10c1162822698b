package project

import (
	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// Resource is the route and permission name of the module.
const Resource = "projects"

// ProjectModule serves /projects.
type ProjectModule struct {
	handler *pkg.CRUDHandler[domain.Project, ProjectRequest, domain.ProjectInput]
}

// NewModule creates a ProjectModule. Panics if svc is nil.
func NewModule(svc domain.ProjectService, guard pkg.Guard) *ProjectModule {
	if svc == nil {
		panic("project.NewModule: service must not be nil")
	}
	return &ProjectModule{handler: &pkg.CRUDHandler[domain.Project, ProjectRequest, domain.ProjectInput]{
		Resource: Resource,
		Schema:   domain.ProjectSchema,
		Service:  svc,
		Convert:  toInput,
		Guard:    guard,
	}}
}

// RegisterRoutes registers the project API routes.
func (m *ProjectModule) RegisterRoutes(api *gin.RouterGroup) {
	m.handler.Register(api)
}
