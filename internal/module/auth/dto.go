package auth

// LoginRequest represents the input for user login.
type LoginRequest struct {
	Account  string `json:"account" form:"account" binding:"required,max=100"`
	Password string `json:"password" form:"password" binding:"required,min=8,max=72"`
}

// RegisterRequest represents the input for user registration.
type RegisterRequest struct {
	Account  string `json:"account" form:"account" binding:"required,max=100"`
	Name     string `json:"name" form:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" form:"email" binding:"omitempty,email"`
	Password string `json:"password" form:"password" binding:"required,min=8,max=72"`
}

// TokenResponse represents the authentication token returned after login.
type TokenResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	Roles     []string `json:"roles"`
}
