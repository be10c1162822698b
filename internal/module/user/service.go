package user

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strconv"

	"github.com/simp-lee/rbac"
	"golang.org/x/crypto/bcrypt"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72
)

var accountPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._@-]*$`)

// roleStore is the part of the RBAC service holding user roles.
type roleStore interface {
	RoleExists(roleID string) (bool, error)
	AssignRole(userID, roleID string) error
	UnassignRole(userID, roleID string) error
	GetUserRoles(userID string) ([]string, error)
}

type userService struct {
	repo  domain.UserRepository
	roles roleStore
}

// NewUserService creates a UserService. Roles are kept in roles under the
// decimal user id.
func NewUserService(repo domain.UserRepository, roles roleStore) domain.UserService {
	return &userService{repo: repo, roles: roles}
}

// RBACUserID is the id a user is known by in the RBAC store.
func RBACUserID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// Create adds a user. A password is required. When assigning the roles fails
// the user is removed again.
func (s *userService) Create(ctx context.Context, in domain.UserInput) (*domain.User, error) {
	in = normalize(in)
	if in.Password == "" {
		return nil, domain.Invalid("password is required")
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}
	u := &domain.User{}
	apply(u, in)
	if err := setPassword(u, in.Password); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	if err := s.replaceRoles(u.ID, in.Roles); err != nil {
		_ = s.repo.Delete(ctx, u.ID)
		return nil, err
	}
	return s.Get(ctx, u.ID)
}

func (s *userService) Get(ctx context.Context, id uint) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.fillRoles(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) List(ctx context.Context, q listview.Query) (*domain.PageResult[domain.User], error) {
	page, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	for i := range page.Items {
		if err := s.fillRoles(&page.Items[i]); err != nil {
			return nil, err
		}
	}
	return page, nil
}

// Update changes the profile of a user. The password is only changed when
// given, the roles only when non-nil.
func (s *userService) Update(ctx context.Context, id uint, in domain.UserInput) (*domain.User, error) {
	in = normalize(in)
	if err := s.validate(in); err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(u, in)
	if in.Password != "" {
		if err := setPassword(u, in.Password); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	if in.Roles != nil {
		if err := s.replaceRoles(id, in.Roles); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.replaceRoles(id, nil)
}

func (s *userService) DeleteSelection(ctx context.Context, q listview.Query, sel listview.Selection) (int64, error) {
	ids, err := s.repo.SelectedIDs(ctx, q, sel)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.DeleteSelection(ctx, q, sel)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if err := s.replaceRoles(id, nil); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (s *userService) SetRoles(ctx context.Context, id uint, roles []string) (*domain.User, error) {
	roles = cleanRoles(roles)
	if err := s.checkRoles(roles); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.replaceRoles(id, roles); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *userService) validate(in domain.UserInput) error {
	if err := pkg.First(
		pkg.RequireText("account", in.Account, 100),
		pkg.RequireText("name", in.Name, 100),
		pkg.OptionalEmail("email", in.Email),
	); err != nil {
		return err
	}
	if !accountPattern.MatchString(in.Account) {
		return domain.Invalid("account may only contain letters, digits and . _ @ -")
	}
	if in.Password != "" && (len(in.Password) < minPasswordLen || len(in.Password) > maxPasswordLen) {
		return domain.Invalid("password must be between 8 and 72 bytes")
	}
	return s.checkRoles(in.Roles)
}

func (s *userService) checkRoles(roles []string) error {
	for _, r := range roles {
		ok, err := s.roles.RoleExists(r)
		if err != nil {
			return pkg.MapRBACError(err)
		}
		if !ok {
			return domain.Invalid("unknown role: " + r)
		}
	}
	return nil
}

// replaceRoles makes roles the exact role set of the user.
func (s *userService) replaceRoles(id uint, roles []string) error {
	uid := RBACUserID(id)
	current, err := s.roles.GetUserRoles(uid)
	if err != nil {
		return pkg.MapRBACError(err)
	}
	for _, r := range current {
		if slices.Contains(roles, r) {
			continue
		}
		if err := s.roles.UnassignRole(uid, r); err != nil && !errors.Is(err, rbac.ErrUserDoesNotHaveRole) {
			return pkg.MapRBACError(err)
		}
	}
	for _, r := range roles {
		if slices.Contains(current, r) {
			continue
		}
		if err := s.roles.AssignRole(uid, r); err != nil && !errors.Is(err, rbac.ErrUserAlreadyHasRole) {
			return pkg.MapRBACError(err)
		}
	}
	return nil
}

func (s *userService) fillRoles(u *domain.User) error {
	roles, err := s.roles.GetUserRoles(RBACUserID(u.ID))
	if err != nil {
		return pkg.MapRBACError(err)
	}
	slices.Sort(roles)
	if roles == nil {
		roles = []string{}
	}
	u.Roles = roles
	return nil
}

func setPassword(u *domain.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

func apply(u *domain.User, in domain.UserInput) {
	u.Account = in.Account
	u.Name = in.Name
	u.Email = in.Email
	u.EmployeeID = in.EmployeeID
	u.Employee = nil
}
