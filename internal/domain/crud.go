package domain

import (
	"context"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
)

// Repository is the data access surface shared by every list-backed entity.
type Repository[T any] interface {
	Create(ctx context.Context, v *T) error
	GetByID(ctx context.Context, id uint) (*T, error)
	List(ctx context.Context, q listview.Query) (*PageResult[T], error)
	Update(ctx context.Context, v *T) error
	Delete(ctx context.Context, id uint) error
	// DeleteSelection removes the selected rows among those matching the
	// search term and filters of q.
	DeleteSelection(ctx context.Context, q listview.Query, sel listview.Selection) (int64, error)
}

// CRUDService is the business surface shared by every list-backed entity.
// In is the validated input of create and update.
type CRUDService[T, In any] interface {
	Create(ctx context.Context, in In) (*T, error)
	Get(ctx context.Context, id uint) (*T, error)
	List(ctx context.Context, q listview.Query) (*PageResult[T], error)
	Update(ctx context.Context, id uint, in In) (*T, error)
	Delete(ctx context.Context, id uint) error
	DeleteSelection(ctx context.Context, q listview.Query, sel listview.Selection) (int64, error)
}
