package employee

import (
	"context"

	"gorm.io/gorm"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

var listSpec = pkg.ListSpec{
	Schema: domain.EmployeeSchema,
	Search: []string{"number", "name", "email", "phone"},
	Filters: map[string]pkg.FilterField{
		"departmentId": {Column: "department_id", ID: true},
	},
}

type employeeRepository struct {
	*pkg.Repo[domain.Employee]
}

// NewEmployeeRepository creates an EmployeeRepository backed by the given GORM database.
func NewEmployeeRepository(db *gorm.DB) domain.EmployeeRepository {
	return &employeeRepository{Repo: pkg.NewRepo[domain.Employee](db, "employee", listSpec, "Department")}
}

func (r *employeeRepository) SetCertificate(ctx context.Context, id uint, url string) error {
	result := r.DB(ctx).Model(&domain.Employee{}).Where("id = ?", id).Update("certificate_url", url)
	if result.Error != nil {
		return pkg.MapError(result.Error, r.Entity())
	}
	if result.RowsAffected == 0 {
		return domain.NotFound(r.Entity())
	}
	return nil
}
