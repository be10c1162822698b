package pkg

import (
	"context"
	"errors"
	"strings"

	"github.com/simp-lee/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
)

// Repo is a GORM repository of one entity. It implements domain.Repository[T]
// and is embedded by repositories that need more than plain CRUD.
type Repo[T any] struct {
	db      *gorm.DB
	entity  string
	spec    ListSpec
	preload []string
}

// NewRepo creates a Repo. entity names the rows in error messages; preload
// lists associations loaded with every read.
func NewRepo[T any](db *gorm.DB, entity string, spec ListSpec, preload ...string) *Repo[T] {
	return &Repo[T]{db: db, entity: entity, spec: spec, preload: preload}
}

// DB returns the underlying handle bound to ctx.
func (r *Repo[T]) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Entity is the name used in error messages.
func (r *Repo[T]) Entity() string {
	return r.entity
}

// Create inserts v.
func (r *Repo[T]) Create(ctx context.Context, v *T) error {
	if err := r.DB(ctx).Omit(clause.Associations).Create(v).Error; err != nil {
		return MapError(err, r.entity)
	}
	return nil
}

// GetByID retrieves a row by its primary key.
func (r *Repo[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var v T
	if err := r.DB(ctx).Scopes(r.withPreload).First(&v, id).Error; err != nil {
		return nil, MapError(err, r.entity)
	}
	return &v, nil
}

// List returns the page of rows matching q. A page past the end is clamped to
// the last page.
func (r *Repo[T]) List(ctx context.Context, q listview.Query) (*domain.PageResult[T], error) {
	q = r.spec.Schema.Normalize(q)
	base := r.matching(ctx, q).Session(&gorm.Session{})

	p := pagination.NewPaginator[T](
		pagination.WithItemsPerPage[T](q.PageSize),
		pagination.WithItemTotalCallback[T](func(ctx context.Context) (int64, error) {
			var total int64
			err := base.Count(&total).Error
			return total, err
		}),
		pagination.WithSliceCallback[T](func(ctx context.Context, offset, limit int) ([]T, error) {
			var items []T
			err := base.Scopes(Order(r.spec, q), r.withPreload).
				Offset(offset).Limit(limit).Find(&items).Error
			return items, err
		}),
	)
	page, err := p.Paginate(ctx, q.Page)
	if err != nil {
		return nil, MapError(err, r.entity)
	}
	return &domain.PageResult[T]{
		Items:      page.Items,
		Total:      page.TotalItems,
		Page:       page.CurrentPage,
		PageSize:   page.ItemsPerPage,
		TotalPages: page.TotalPages,
	}, nil
}

// Update saves every column of v. Associations are left untouched.
func (r *Repo[T]) Update(ctx context.Context, v *T) error {
	if err := r.DB(ctx).Omit(clause.Associations).Save(v).Error; err != nil {
		return MapError(err, r.entity)
	}
	return nil
}

// Delete removes a row by ID.
func (r *Repo[T]) Delete(ctx context.Context, id uint) error {
	result := r.DB(ctx).Delete(new(T), id)
	if result.Error != nil {
		return MapError(result.Error, r.entity)
	}
	if result.RowsAffected == 0 {
		return domain.NotFound(r.entity)
	}
	return nil
}

// DeleteSelection removes the selected rows among those matching the search
// term and filters of q, and reports how many were removed.
func (r *Repo[T]) DeleteSelection(ctx context.Context, q listview.Query, sel listview.Selection) (int64, error) {
	if !sel.IsAllExcept() && sel.IsEmpty() {
		return 0, nil
	}
	result := r.matching(ctx, q).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Scopes(Selected(sel)).
		Delete(new(T))
	if result.Error != nil {
		return 0, MapError(result.Error, r.entity)
	}
	return result.RowsAffected, nil
}

// SelectedIDs returns the ids of the rows DeleteSelection would remove.
func (r *Repo[T]) SelectedIDs(ctx context.Context, q listview.Query, sel listview.Selection) ([]uint, error) {
	var ids []uint
	if !sel.IsAllExcept() && sel.IsEmpty() {
		return ids, nil
	}
	err := r.matching(ctx, q).Scopes(Selected(sel)).Order("id").Pluck("id", &ids).Error
	if err != nil {
		return nil, MapError(err, r.entity)
	}
	return ids, nil
}

func (r *Repo[T]) matching(ctx context.Context, q listview.Query) *gorm.DB {
	return r.DB(ctx).Model(new(T)).Scopes(Search(r.spec.Search, q.SearchTerm), Filter(r.spec, q))
}

func (r *Repo[T]) withPreload(db *gorm.DB) *gorm.DB {
	for _, assoc := range r.preload {
		db = db.Preload(assoc)
	}
	return db
}

// MapError converts GORM errors to domain errors. Errors that already are
// domain errors pass through unchanged.
func MapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(entity)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, entity+" already exists", err)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || isForeignKeyError(err) {
		return domain.NewAppError(domain.CodeValidation, entity+" references a missing record", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. This is needed because not all GORM dialectors translate
// driver-level errors to gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

func isForeignKeyError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}
