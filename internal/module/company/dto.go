package company

import (
	"strings"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
)

// CompanyRequest is the body of create and update.
type CompanyRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	TaxID   string `json:"tax_id" binding:"max=50"`
	Phone   string `json:"phone" binding:"max=50"`
	Email   string `json:"email" binding:"omitempty,email,max=255"`
	Address string `json:"address" binding:"max=500"`
}

func (r *CompanyRequest) toInput() domain.CompanyInput {
	return domain.CompanyInput{
		Name:    r.Name,
		TaxID:   r.TaxID,
		Phone:   r.Phone,
		Email:   r.Email,
		Address: r.Address,
	}
}

func normalize(in domain.CompanyInput) domain.CompanyInput {
	in.Name = strings.TrimSpace(in.Name)
	in.TaxID = strings.TrimSpace(in.TaxID)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Address = strings.TrimSpace(in.Address)
	return in
}
