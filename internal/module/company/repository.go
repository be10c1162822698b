package company

import (
	"context"

	"gorm.io/gorm"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

const entity = "company"

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a CompanyRepository backed by the given GORM database.
func NewCompanyRepository(db *gorm.DB) domain.CompanyRepository {
	return &companyRepository{db: db}
}

// Get returns the oldest company row. Only one is ever created.
func (r *companyRepository) Get(ctx context.Context) (*domain.Company, error) {
	var c domain.Company
	if err := r.db.WithContext(ctx).Order("id").First(&c).Error; err != nil {
		return nil, pkg.MapError(err, entity)
	}
	return &c, nil
}

func (r *companyRepository) Create(ctx context.Context, c *domain.Company) error {
	return pkg.MapError(r.db.WithContext(ctx).Create(c).Error, entity)
}

func (r *companyRepository) Update(ctx context.Context, c *domain.Company) error {
	return pkg.MapError(r.db.WithContext(ctx).Save(c).Error, entity)
}
