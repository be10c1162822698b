package department

import (
	"gorm.io/gorm"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

var listSpec = pkg.ListSpec{
	Schema: domain.DepartmentSchema,
	Search: []string{"code", "name"},
}

// NewDepartmentRepository creates a DepartmentRepository backed by the given GORM database.
func NewDepartmentRepository(db *gorm.DB) domain.DepartmentRepository {
	return pkg.NewRepo[domain.Department](db, "department", listSpec)
}
