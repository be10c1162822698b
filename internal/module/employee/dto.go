package employee

import (
	"strings"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// EmployeeRequest is the body of create and update. HiredAt is YYYY-MM-DD.
type EmployeeRequest struct {
	Number       string `json:"number" binding:"required,max=32"`
	Name         string `json:"name" binding:"required,max=100"`
	Email        string `json:"email" binding:"omitempty,email,max=255"`
	Phone        string `json:"phone" binding:"max=50"`
	Title        string `json:"title" binding:"max=100"`
	DepartmentID *uint  `json:"department_id" binding:"omitempty,gt=0"`
	HiredAt      string `json:"hired_at" binding:"omitempty,datetime=2006-01-02"`
}

func toInput(req *EmployeeRequest) (domain.EmployeeInput, error) {
	hired, err := pkg.ParseDate("hired_at", req.HiredAt)
	if err != nil {
		return domain.EmployeeInput{}, err
	}
	return domain.EmployeeInput{
		Number:       req.Number,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Title:        req.Title,
		DepartmentID: req.DepartmentID,
		HiredAt:      hired,
	}, nil
}

func normalize(in domain.EmployeeInput) domain.EmployeeInput {
	in.Number = strings.ToUpper(strings.TrimSpace(in.Number))
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Title = strings.TrimSpace(in.Title)
	return in
}
