package auth

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/simp-lee/jwt"
	"golang.org/x/crypto/bcrypt"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
)

// Service defines the authentication operations.
type Service interface {
	Login(ctx context.Context, account, password string) (*TokenResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	// Me returns the user a token was issued to.
	Me(ctx context.Context, userID string) (*domain.User, error)
	Logout(token string) error
}

// accountLookup finds users by sign-in account.
type accountLookup interface {
	GetByAccount(ctx context.Context, account string) (*domain.User, error)
}

type authService struct {
	jwtSvc      jwt.Service
	accounts    accountLookup
	users       domain.UserService
	tokenExpiry time.Duration
}

// NewService creates a new auth Service. Users are created and read through
// users so that roles stay in the RBAC store.
func NewService(jwtSvc jwt.Service, accounts accountLookup, users domain.UserService, tokenExpiry time.Duration) Service {
	return &authService{
		jwtSvc:      jwtSvc,
		accounts:    accounts,
		users:       users,
		tokenExpiry: tokenExpiry,
	}
}

// Login authenticates a user by account and password and returns a JWT
// carrying the user's roles.
func (s *authService) Login(ctx context.Context, account, password string) (*TokenResponse, error) {
	u, err := s.accounts.GetByAccount(ctx, strings.ToLower(strings.TrimSpace(account)))
	if err != nil {
		// unknown accounts look the same as wrong passwords
		if domain.IsNotFound(err) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	full, err := s.users.Get(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	token, err := s.jwtSvc.GenerateToken(strconv.FormatUint(uint64(u.ID), 10), full.Roles, s.tokenExpiry)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to generate token", err)
	}
	parsed, err := s.jwtSvc.ParseToken(token)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to parse generated token", err)
	}
	return &TokenResponse{
		Token:     token,
		ExpiresAt: parsed.ExpiresAt.Unix(),
		Roles:     full.Roles,
	}, nil
}

// Register creates a user without roles.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	return s.users.Create(ctx, domain.UserInput{
		Account:  req.Account,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
}

func (s *authService) Me(ctx context.Context, userID string) (*domain.User, error) {
	id, err := strconv.ParseUint(userID, 10, 64)
	if err != nil || id == 0 {
		return nil, domain.ErrUnauthorized
	}
	u, err := s.users.Get(ctx, uint(id))
	if domain.IsNotFound(err) {
		// the token outlived its user
		return nil, domain.ErrUnauthorized
	}
	return u, err
}

// Logout revokes token so it is refused until it expires.
func (s *authService) Logout(token string) error {
	if err := s.jwtSvc.RevokeToken(token); err != nil {
		return domain.NewAppError(domain.CodeUnauthorized, "invalid token", err)
	}
	return nil
}
