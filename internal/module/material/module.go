package material

import (
	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// Resource is the route and permission name of the module.
const Resource = "materials"

// MaterialModule serves /materials and the purchase history.
type MaterialModule struct {
	crud      *pkg.CRUDHandler[domain.Material, MaterialRequest, domain.MaterialInput]
	purchases *PurchaseHandler
	guard     pkg.Guard
}

// NewModule creates a MaterialModule. Panics if svc is nil.
func NewModule(svc domain.MaterialService, guard pkg.Guard) *MaterialModule {
	if svc == nil {
		panic("material.NewModule: service must not be nil")
	}
	if guard == nil {
		guard = pkg.Open{}
	}
	return &MaterialModule{
		crud: &pkg.CRUDHandler[domain.Material, MaterialRequest, domain.MaterialInput]{
			Resource: Resource,
			Schema:   domain.MaterialSchema,
			Service:  svc,
			Convert:  toInput,
			Guard:    guard,
		},
		purchases: &PurchaseHandler{svc: svc, guard: guard},
		guard:     guard,
	}
}

// RegisterRoutes registers the material API routes.
func (m *MaterialModule) RegisterRoutes(api *gin.RouterGroup) {
	m.crud.Register(api)
	path := "/" + Resource + "/:id/purchases"
	api.GET(path, pkg.Chain(m.guard.Read(Resource), m.purchases.List)...)
	api.POST(path, pkg.Chain(m.guard.Write(Resource), m.purchases.Record)...)
}
