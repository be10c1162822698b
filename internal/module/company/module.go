package company

import (
	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/storage"
)

// Resource is the route and permission name of the module.
const Resource = "company"

// CompanyModule serves the company profile.
type CompanyModule struct {
	handler *CompanyHandler
	guard   pkg.Guard
}

// NewModule creates a CompanyModule. Panics if svc or uploader is nil.
func NewModule(svc domain.CompanyService, uploader *storage.Uploader, guard pkg.Guard) *CompanyModule {
	if svc == nil {
		panic("company.NewModule: service must not be nil")
	}
	if uploader == nil {
		panic("company.NewModule: uploader must not be nil")
	}
	if guard == nil {
		guard = pkg.Open{}
	}
	return &CompanyModule{
		handler: &CompanyHandler{svc: svc, uploader: uploader, guard: guard},
		guard:   guard,
	}
}

// RegisterRoutes registers the company API routes.
func (m *CompanyModule) RegisterRoutes(api *gin.RouterGroup) {
	read, write := m.guard.Read(Resource), m.guard.Write(Resource)
	api.GET("/company", pkg.Chain(read, m.handler.Get)...)
	api.POST("/company", pkg.Chain(write, m.handler.Create)...)
	api.PUT("/company", pkg.Chain(write, m.handler.Update)...)
	api.PUT("/company/logo", pkg.Chain(write, m.handler.UploadLogo)...)
}
