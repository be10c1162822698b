package customer

import (
	"gorm.io/gorm"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

var listSpec = pkg.ListSpec{
	Schema: domain.CustomerSchema,
	Search: []string{"code", "name", "contact_person", "phone", "tax_id"},
}

// NewCustomerRepository creates a CustomerRepository backed by the given GORM database.
func NewCustomerRepository(db *gorm.DB) domain.CustomerRepository {
	return pkg.NewRepo[domain.Customer](db, "customer", listSpec)
}
