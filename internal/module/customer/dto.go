package customer

import (
	"strings"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
)

// CustomerRequest is the body of create and update.
type CustomerRequest struct {
	Code          string `json:"code" binding:"required,max=32"`
	Name          string `json:"name" binding:"required,max=200"`
	ContactPerson string `json:"contact_person" binding:"max=100"`
	Phone         string `json:"phone" binding:"max=50"`
	Email         string `json:"email" binding:"omitempty,email,max=255"`
	Address       string `json:"address" binding:"max=500"`
	TaxID         string `json:"tax_id" binding:"max=50"`
}

func toInput(req *CustomerRequest) (domain.CustomerInput, error) {
	return domain.CustomerInput{
		Code:          req.Code,
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		TaxID:         req.TaxID,
	}, nil
}

func normalize(in domain.CustomerInput) domain.CustomerInput {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	in.ContactPerson = strings.TrimSpace(in.ContactPerson)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Address = strings.TrimSpace(in.Address)
	in.TaxID = strings.TrimSpace(in.TaxID)
	return in
}
