package department

import (
	"strings"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
)

// DepartmentRequest is the body of create and update.
type DepartmentRequest struct {
	Code        string `json:"code" binding:"required,max=32"`
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

func toInput(req *DepartmentRequest) (domain.DepartmentInput, error) {
	return domain.DepartmentInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	}, nil
}

func normalize(in domain.DepartmentInput) domain.DepartmentInput {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in
}
