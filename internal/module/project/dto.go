package project

import (
	"strings"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// ProjectRequest is the body of create and update. Dates are YYYY-MM-DD.
type ProjectRequest struct {
	Code       string `json:"code" binding:"required,max=32"`
	Name       string `json:"name" binding:"required,max=200"`
	CustomerID *uint  `json:"customer_id" binding:"omitempty,gt=0"`
	Status     string `json:"status" binding:"omitempty,oneof=planning active closed"`
	StartDate  string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate    string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Notes      string `json:"notes" binding:"max=1000"`
}

func toInput(req *ProjectRequest) (domain.ProjectInput, error) {
	start, err := pkg.ParseDate("start_date", req.StartDate)
	if err != nil {
		return domain.ProjectInput{}, err
	}
	end, err := pkg.ParseDate("end_date", req.EndDate)
	if err != nil {
		return domain.ProjectInput{}, err
	}
	return domain.ProjectInput{
		Code:       req.Code,
		Name:       req.Name,
		CustomerID: req.CustomerID,
		Status:     req.Status,
		StartDate:  start,
		EndDate:    end,
		Notes:      req.Notes,
	}, nil
}

func normalize(in domain.ProjectInput) domain.ProjectInput {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	if in.Status == "" {
		in.Status = domain.ProjectPlanning
	}
	in.Notes = strings.TrimSpace(in.Notes)
	return in
}
