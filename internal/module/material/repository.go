package material

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

var listSpec = pkg.ListSpec{
	Schema: domain.MaterialSchema,
	Search: []string{"code", "name", "spec", "supplier"},
	Filters: map[string]pkg.FilterField{
		"supplier": {Column: "supplier"},
		"unit":     {Column: "unit"},
	},
}

type materialRepository struct {
	*pkg.Repo[domain.Material]
}

// NewMaterialRepository creates a MaterialRepository backed by the given GORM database.
func NewMaterialRepository(db *gorm.DB) domain.MaterialRepository {
	return &materialRepository{Repo: pkg.NewRepo[domain.Material](db, "material", listSpec)}
}

func (r *materialRepository) AddPurchase(ctx context.Context, p *domain.Purchase) error {
	err := pkg.WithTx(ctx, r.DB(ctx), func(tx *gorm.DB) error {
		result := tx.Model(&domain.Material{}).
			Where("id = ?", p.MaterialID).
			Update("stock", gorm.Expr("stock + ?", p.Quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.NotFound(r.Entity())
		}
		return tx.Omit(clause.Associations).Create(p).Error
	})
	return pkg.MapError(err, "purchase")
}

func (r *materialRepository) Purchases(ctx context.Context, materialID uint, after uint, limit int) ([]domain.Purchase, error) {
	q := r.DB(ctx).Where("material_id = ?", materialID)
	if after > 0 {
		q = q.Where("id < ?", after)
	}
	var items []domain.Purchase
	if err := q.Order("id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, pkg.MapError(err, "purchase")
	}
	return items, nil
}
