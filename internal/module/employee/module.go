package employee

import (
	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/storage"
)

// Resource is the route and permission name of the module.
const Resource = "employees"

// EmployeeModule serves /employees and the certificate upload.
type EmployeeModule struct {
	crud        *pkg.CRUDHandler[domain.Employee, EmployeeRequest, domain.EmployeeInput]
	certificate *CertificateHandler
	guard       pkg.Guard
}

// NewModule creates an EmployeeModule. Panics if svc or uploader is nil.
func NewModule(svc domain.EmployeeService, uploader *storage.Uploader, guard pkg.Guard) *EmployeeModule {
	if svc == nil {
		panic("employee.NewModule: service must not be nil")
	}
	if uploader == nil {
		panic("employee.NewModule: uploader must not be nil")
	}
	if guard == nil {
		guard = pkg.Open{}
	}
	return &EmployeeModule{
		crud: &pkg.CRUDHandler[domain.Employee, EmployeeRequest, domain.EmployeeInput]{
			Resource: Resource,
			Schema:   domain.EmployeeSchema,
			Service:  svc,
			Convert:  toInput,
			Guard:    guard,
		},
		certificate: &CertificateHandler{svc: svc, uploader: uploader, guard: guard},
		guard:       guard,
	}
}

// RegisterRoutes registers the employee API routes.
func (m *EmployeeModule) RegisterRoutes(api *gin.RouterGroup) {
	m.crud.Register(api)
	api.PUT("/"+Resource+"/:id/certificate", pkg.Chain(m.guard.Write(Resource), m.certificate.Upload)...)
}
