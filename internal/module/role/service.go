package role

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/simp-lee/pagination"
	"github.com/simp-lee/rbac"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

type roleService struct {
	rbac rbac.Service
}

// NewRoleService creates a RoleService over the RBAC store.
func NewRoleService(svc rbac.Service) domain.RoleService {
	return &roleService{rbac: svc}
}

func (s *roleService) Create(ctx context.Context, in domain.RoleInput) (*domain.Role, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	if err := s.rbac.CreateRole(in.ID, in.Name, in.Description); err != nil {
		return nil, pkg.MapRBACError(err)
	}
	if in.Permissions != nil {
		if err := s.replacePermissions(in.ID, in.Permissions); err != nil {
			// leave no half-configured role behind
			_ = s.rbac.DeleteRole(in.ID)
			return nil, err
		}
	}
	return s.Get(ctx, in.ID)
}

func (s *roleService) Get(_ context.Context, id string) (*domain.Role, error) {
	r, err := s.rbac.GetRole(id)
	if err != nil {
		return nil, pkg.MapRBACError(err)
	}
	return toDomain(r), nil
}

// List pages through the roles in memory; the RBAC store has no query support.
func (s *roleService) List(ctx context.Context, q listview.Query) (*domain.PageResult[domain.Role], error) {
	q = domain.RoleSchema.Normalize(q)
	roles, err := s.matching(q)
	if err != nil {
		return nil, err
	}
	sortRoles(roles, q)

	p := pagination.NewPaginator[domain.Role](
		pagination.WithItemsPerPage[domain.Role](q.PageSize),
		pagination.WithKnownTotal[domain.Role](int64(len(roles))),
		pagination.WithSliceCallback[domain.Role](func(_ context.Context, offset, limit int) ([]domain.Role, error) {
			end := min(offset+limit, len(roles))
			if offset >= end {
				return []domain.Role{}, nil
			}
			return roles[offset:end], nil
		}),
	)
	page, err := p.Paginate(ctx, q.Page)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to paginate roles", err)
	}
	return &domain.PageResult[domain.Role]{
		Items:      page.Items,
		Total:      page.TotalItems,
		Page:       page.CurrentPage,
		PageSize:   page.ItemsPerPage,
		TotalPages: page.TotalPages,
	}, nil
}

func (s *roleService) Update(ctx context.Context, id string, in domain.RoleInput) (*domain.Role, error) {
	in.ID = id
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	if err := s.rbac.UpdateRole(id, in.Name, in.Description); err != nil {
		return nil, pkg.MapRBACError(err)
	}
	if in.Permissions != nil {
		if err := s.replacePermissions(id, in.Permissions); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// Delete removes a role and its assignments.
func (s *roleService) Delete(_ context.Context, id string) error {
	return pkg.MapRBACError(s.rbac.DeleteRole(id))
}

func (s *roleService) DeleteSelection(_ context.Context, q listview.Query, sel listview.Selection) (int64, error) {
	if sel.IsEmpty() {
		return 0, nil
	}
	roles, err := s.matching(q)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, r := range roles {
		if !sel.Contains(r.ID) {
			continue
		}
		if err := s.rbac.DeleteRole(r.ID); err != nil {
			return n, pkg.MapRBACError(err)
		}
		n++
	}
	return n, nil
}

func (s *roleService) SetPermissions(ctx context.Context, id string, perms map[string][]string) (*domain.Role, error) {
	if _, err := s.rbac.GetRole(id); err != nil {
		return nil, pkg.MapRBACError(err)
	}
	if err := s.replacePermissions(id, perms); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *roleService) replacePermissions(id string, perms map[string][]string) error {
	current, err := s.rbac.GetRolePermissions(id)
	if err != nil {
		return pkg.MapRBACError(err)
	}
	for resource := range current {
		if err := s.rbac.RemoveRolePermissions(id, resource); err != nil {
			return pkg.MapRBACError(err)
		}
	}
	for _, resource := range slices.Sorted(maps.Keys(perms)) {
		actions := perms[resource]
		if len(actions) == 0 {
			continue
		}
		if err := s.rbac.AddRolePermissions(id, resource, actions); err != nil {
			return pkg.MapRBACError(err)
		}
	}
	return nil
}

// matching returns the roles whose id, name or description contain the
// search term.
func (s *roleService) matching(q listview.Query) ([]domain.Role, error) {
	all, err := s.rbac.ListRoles()
	if err != nil {
		return nil, pkg.MapRBACError(err)
	}
	term := strings.ToLower(strings.TrimSpace(q.SearchTerm))
	out := make([]domain.Role, 0, len(all))
	for _, r := range all {
		if term != "" &&
			!strings.Contains(strings.ToLower(r.ID), term) &&
			!strings.Contains(strings.ToLower(r.Name), term) &&
			!strings.Contains(strings.ToLower(r.Description), term) {
			continue
		}
		out = append(out, *toDomain(r))
	}
	return out, nil
}

func sortRoles(roles []domain.Role, q listview.Query) {
	slices.SortStableFunc(roles, func(a, b domain.Role) int {
		var c int
		switch q.OrderBy {
		case "name":
			c = cmp.Compare(a.Name, b.Name)
		case "created_at":
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if q.OrderDirection == listview.Desc {
			return -c
		}
		return c
	})
}

func validate(in domain.RoleInput) error {
	return pkg.First(
		pkg.RequireText("id", in.ID, rbac.MaxRoleIDLength),
		pkg.RequireText("name", in.Name, 100),
		pkg.OptionalText("description", in.Description, 500),
	)
}

func toDomain(r *rbac.Role) *domain.Role {
	perms := make(map[string][]string, len(r.Permissions))
	for res, actions := range r.Permissions {
		perms[res] = slices.Sorted(slices.Values(actions))
	}
	return &domain.Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: perms,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
