package auth

import "github.com/gin-gonic/gin"

// AuthModule serves /auth.
type AuthModule struct {
	handler *AuthHandler
	// authenticate guards the routes that need a signed-in user.
	authenticate []gin.HandlerFunc
}

// NewModule creates a new AuthModule with the given handler. authenticate is
// placed before /auth/me and /auth/logout. Panics if h is nil.
func NewModule(h *AuthHandler, authenticate ...gin.HandlerFunc) *AuthModule {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	return &AuthModule{handler: h, authenticate: authenticate}
}

// RegisterRoutes registers auth API routes.
func (m *AuthModule) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.POST("/login", m.handler.Login)
	auth.POST("/register", m.handler.Register)

	private := auth.Group("", m.authenticate...)
	private.GET("/me", m.handler.Me)
	private.POST("/logout", m.handler.Logout)
}
