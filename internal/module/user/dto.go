package user

import (
	"strings"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
)

// UserRequest is the body of create and update. Password is required on
// create and optional on update; Roles, when present, replaces the roles.
type UserRequest struct {
	Account    string   `json:"account" binding:"required,max=100"`
	Name       string   `json:"name" binding:"required,max=100"`
	Email      string   `json:"email" binding:"omitempty,email,max=255"`
	EmployeeID *uint    `json:"employee_id" binding:"omitempty,gt=0"`
	Password   string   `json:"password" binding:"omitempty,min=8,max=72"`
	Roles      []string `json:"roles"`
}

// RolesRequest is the body of PUT /users/:id/roles.
type RolesRequest struct {
	Roles []string `json:"roles" binding:"required"`
}

func toInput(req *UserRequest) (domain.UserInput, error) {
	return domain.UserInput{
		Account:    req.Account,
		Name:       req.Name,
		Email:      req.Email,
		EmployeeID: req.EmployeeID,
		Password:   req.Password,
		Roles:      req.Roles,
	}, nil
}

func normalize(in domain.UserInput) domain.UserInput {
	in.Account = strings.ToLower(strings.TrimSpace(in.Account))
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Roles != nil {
		in.Roles = cleanRoles(in.Roles)
	}
	return in
}

// cleanRoles trims role ids and drops blanks and duplicates, keeping order.
func cleanRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	seen := make(map[string]bool, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
