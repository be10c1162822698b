package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// AuthHandler handles REST API requests for authentication.
type AuthHandler struct {
	svc Service
}

// NewHandler creates a new AuthHandler with the given service.
func NewHandler(svc Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	tokenResp, err := h.svc.Login(c.Request.Context(), req.Account, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, tokenResp)
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, user)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := ginx.GetUserID(c)
	if !ok {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}
	user, err := h.svc.Me(c.Request.Context(), userID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, user)
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || token == "" {
		pkg.Error(c, domain.ErrUnauthorized)
		return
	}
	if err := h.svc.Logout(token); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}
