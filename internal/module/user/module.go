package user

import (
	"github.com/gin-gonic/gin"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// Resource is the route and permission name of the module.
const Resource = "users"

// UserModule serves /users.
type UserModule struct {
	crud  *pkg.CRUDHandler[domain.User, UserRequest, domain.UserInput]
	roles *RolesHandler
	guard pkg.Guard
}

// NewModule creates a UserModule. Panics if svc is nil.
func NewModule(svc domain.UserService, guard pkg.Guard) *UserModule {
	if svc == nil {
		panic("user.NewModule: service must not be nil")
	}
	if guard == nil {
		guard = pkg.Open{}
	}
	return &UserModule{
		crud: &pkg.CRUDHandler[domain.User, UserRequest, domain.UserInput]{
			Resource: Resource,
			Schema:   domain.UserSchema,
			Service:  svc,
			Convert:  toInput,
			Guard:    guard,
		},
		roles: &RolesHandler{svc: svc, guard: guard},
		guard: guard,
	}
}

// RegisterRoutes registers the user API routes.
func (m *UserModule) RegisterRoutes(api *gin.RouterGroup) {
	m.crud.Register(api)
	api.PUT("/"+Resource+"/:id/roles", pkg.Chain(m.guard.Write(Resource), m.roles.Set)...)
}
