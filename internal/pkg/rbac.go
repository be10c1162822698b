package pkg

import (
	"errors"

	"github.com/simp-lee/rbac"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
)

var rbacInputErrors = []error{
	rbac.ErrInvalidRoleID,
	rbac.ErrEmptyRoleID,
	rbac.ErrRoleIDTooLong,
	rbac.ErrInvalidRoleIDChars,
	rbac.ErrEmptyUserID,
	rbac.ErrUserIDTooLong,
	rbac.ErrInvalidUserIDChars,
	rbac.ErrEmptyResource,
	rbac.ErrResourceTooLong,
	rbac.ErrInvalidResourceChars,
	rbac.ErrEmptyAction,
	rbac.ErrActionTooLong,
	rbac.ErrInvalidActionChars,
}

// MapRBACError converts errors of the RBAC store to domain errors.
func MapRBACError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, rbac.ErrRoleNotFound):
		return domain.NotFound("role")
	case errors.Is(err, rbac.ErrRoleAlreadyExists):
		return domain.NewAppError(domain.CodeAlreadyExists, "role already exists", err)
	}
	for _, target := range rbacInputErrors {
		if errors.Is(err, target) {
			return domain.NewAppError(domain.CodeValidation, err.Error(), err)
		}
	}
	return domain.NewAppError(domain.CodeInternal, "role store error", err)
}
