package project

import (
	"gorm.io/gorm"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

var listSpec = pkg.ListSpec{
	Schema: domain.ProjectSchema,
	Search: []string{"code", "name"},
	Filters: map[string]pkg.FilterField{
		"customerId": {Column: "customer_id", ID: true},
		"status":     {Column: "status", Apply: statusFilter},
	},
}

func statusFilter(db *gorm.DB, value string) *gorm.DB {
	if !domain.ValidProjectStatus(value) {
		_ = db.AddError(domain.Invalid("invalid status: " + value))
		return db
	}
	return db.Where("status = ?", value)
}

// NewProjectRepository creates a ProjectRepository backed by the given GORM database.
func NewProjectRepository(db *gorm.DB) domain.ProjectRepository {
	return pkg.NewRepo[domain.Project](db, "project", listSpec, "Customer")
}
