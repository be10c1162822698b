package customer

import (
	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// Resource is the route and permission name of the module.
const Resource = "customers"

// CustomerModule serves /customers.
type CustomerModule struct {
	handler *pkg.CRUDHandler[domain.Customer, CustomerRequest, domain.CustomerInput]
}

// NewModule creates a CustomerModule. Panics if svc is nil.
func NewModule(svc domain.CustomerService, guard pkg.Guard) *CustomerModule {
	if svc == nil {
		panic("customer.NewModule: service must not be nil")
	}
	return &CustomerModule{handler: &pkg.CRUDHandler[domain.Customer, CustomerRequest, domain.CustomerInput]{
		Resource: Resource,
		Schema:   domain.CustomerSchema,
		Service:  svc,
		Convert:  toInput,
		Guard:    guard,
	}}
}

// RegisterRoutes registers the customer API routes.
func (m *CustomerModule) RegisterRoutes(api *gin.RouterGroup) {
	m.handler.Register(api)
}
