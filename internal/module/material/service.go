package material

import (
	"context"
	"strconv"

	"github.com/simp-lee/pagination"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/pkg"
)

// Purchase history segment sizes.
const (
	DefaultPurchaseLimit = 20
	MaxPurchaseLimit     = 100
)

type materialService struct {
	repo domain.MaterialRepository
}

// NewMaterialService creates a MaterialService with the given repository.
func NewMaterialService(repo domain.MaterialRepository) domain.MaterialService {
	return &materialService{repo: repo}
}

func (s *materialService) Create(ctx context.Context, in domain.MaterialInput) (*domain.Material, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	m := &domain.Material{}
	apply(m, in)
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *materialService) Get(ctx context.Context, id uint) (*domain.Material, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *materialService) List(ctx context.Context, q listview.Query) (*domain.PageResult[domain.Material], error) {
	return s.repo.List(ctx, q)
}

func (s *materialService) Update(ctx context.Context, id uint, in domain.MaterialInput) (*domain.Material, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(m, in)
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes a material together with its purchase history.
func (s *materialService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *materialService) DeleteSelection(ctx context.Context, q listview.Query, sel listview.Selection) (int64, error) {
	return s.repo.DeleteSelection(ctx, q, sel)
}

// RecordPurchase stores a purchase and raises the stock of the material. A
// purchase without a supplier inherits the material's supplier.
func (s *materialService) RecordPurchase(ctx context.Context, materialID uint, in domain.PurchaseInput) (*domain.Purchase, error) {
	if in.Quantity <= 0 {
		return nil, domain.Invalid("quantity must be greater than 0")
	}
	if in.UnitPrice < 0 {
		return nil, domain.Invalid("unit_price must not be negative")
	}
	if err := pkg.OptionalText("supplier", in.Supplier, 200); err != nil {
		return nil, err
	}
	m, err := s.repo.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	p := &domain.Purchase{
		MaterialID:  m.ID,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Supplier:    in.Supplier,
		PurchasedAt: purchaseTime(in.PurchasedAt),
	}
	if p.Supplier == "" {
		p.Supplier = m.Supplier
	}
	if err := s.repo.AddPurchase(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPurchases returns the purchases of a material newest first. cursor is
// the NextCursor of the previous segment, empty for the first one.
func (s *materialService) ListPurchases(ctx context.Context, materialID uint, cursor string, limit int) (*domain.CursorResult[domain.Purchase], error) {
	if _, err := s.repo.GetByID(ctx, materialID); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultPurchaseLimit
	case limit > MaxPurchaseLimit:
		limit = MaxPurchaseLimit
	}
	req := pagination.CursorRequest{Limit: limit}
	if cursor != "" {
		req.AfterCursor = &cursor
	}

	p := pagination.NewPaginator[domain.Purchase](
		pagination.WithItemsPerPage[domain.Purchase](DefaultPurchaseLimit),
		pagination.WithCursorSliceCallback[domain.Purchase](func(ctx context.Context, req pagination.CursorRequest) (*pagination.CursorResult[domain.Purchase], error) {
			var after uint64
			if req.AfterCursor != nil {
				v, err := strconv.ParseUint(*req.AfterCursor, 10, 64)
				if err != nil || v == 0 {
					return nil, domain.Invalid("invalid cursor: " + *req.AfterCursor)
				}
				after = v
			}
			// one extra row tells whether another segment exists
			items, err := s.repo.Purchases(ctx, materialID, uint(after), req.Limit+1)
			if err != nil {
				return nil, err
			}
			res := &pagination.CursorResult[domain.Purchase]{Items: items}
			if len(items) > req.Limit {
				res.Items = items[:req.Limit]
				res.HasMore = true
				next := strconv.FormatUint(uint64(res.Items[len(res.Items)-1].ID), 10)
				res.NextCursor = &next
			}
			return res, nil
		}),
	)
	page, err := p.PaginateByCursor(ctx, req)
	if err != nil {
		return nil, pkg.MapError(err, "purchase")
	}
	return &domain.CursorResult[domain.Purchase]{
		Items:      page.Items,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}, nil
}

func validate(in domain.MaterialInput) error {
	return pkg.First(
		pkg.RequireText("code", in.Code, 32),
		pkg.RequireText("name", in.Name, 200),
		pkg.OptionalText("spec", in.Spec, 200),
		pkg.RequireText("unit", in.Unit, 20),
		pkg.OptionalText("supplier", in.Supplier, 200),
	)
}

func apply(m *domain.Material, in domain.MaterialInput) {
	m.Code = in.Code
	m.Name = in.Name
	m.Spec = in.Spec
	m.Unit = in.Unit
	m.Supplier = in.Supplier
}
