package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
)

// Resource is the remote collection of one entity under path, e.g. "/employees".
type Resource[T any] struct {
	c    *Client
	path string
}

// NewResource returns the collection at path.
func NewResource[T any](c *Client, path string) Resource[T] {
	return Resource[T]{c: c, path: path}
}

// Path returns the collection path.
func (r Resource[T]) Path() string { return r.path }

// List reads one page. The returned page number may differ from q.Page when
// the server clamped a page that no longer exists.
func (r Resource[T]) List(ctx context.Context, q listview.Query) (listview.Page[T], error) {
	var items []T
	env, err := r.c.do(ctx, http.MethodGet, r.path, q.Values(), nil, &items)
	if err != nil {
		return listview.Page[T]{}, err
	}
	if env.Pagination == nil {
		return listview.Page[T]{}, fmt.Errorf("list %s: response has no pagination", r.path)
	}
	meta := env.Pagination
	return listview.Page[T]{
		Items:      items,
		Total:      meta.Total,
		Page:       meta.Page,
		PageSize:   meta.PageSize,
		TotalPages: max(meta.PageCount, 1),
	}, nil
}

// Get reads one row.
func (r Resource[T]) Get(ctx context.Context, id uint) (T, error) {
	var out T
	err := r.c.Do(ctx, http.MethodGet, r.item(id), nil, nil, &out)
	return out, err
}

// Create posts in and returns the created row.
func (r Resource[T]) Create(ctx context.Context, in any) (T, error) {
	var out T
	err := r.c.Do(ctx, http.MethodPost, r.path, nil, in, &out)
	return out, err
}

// Update puts in and returns the updated row.
func (r Resource[T]) Update(ctx context.Context, id uint, in any) (T, error) {
	var out T
	err := r.c.Do(ctx, http.MethodPut, r.item(id), nil, in, &out)
	return out, err
}

// DeleteOne removes one row.
func (r Resource[T]) DeleteOne(ctx context.Context, id uint) error {
	return r.c.Do(ctx, http.MethodDelete, r.item(id), nil, nil, nil)
}

// BulkDeleteRequest is the body of a bulk delete. An AllExcept selection is
// resolved by the server against the search term and filters.
type BulkDeleteRequest struct {
	Selection  listview.Selection `json:"selection"`
	SearchTerm string             `json:"searchTerm,omitempty"`
	Filters    map[string]string  `json:"filters,omitempty"`
}

// Delete removes the selected rows of the list shown for q and returns how many were deleted.
func (r Resource[T]) Delete(ctx context.Context, sel listview.Selection, q listview.Query) (int64, error) {
	var out struct {
		Deleted int64 `json:"deleted"`
	}
	err := r.c.Do(ctx, http.MethodPost, r.path+"/bulk-delete", nil, BulkDeleteRequest{
		Selection:  sel,
		SearchTerm: q.SearchTerm,
		Filters:    q.Filters,
	}, &out)
	return out.Deleted, err
}

func (r Resource[T]) item(id uint) string {
	return r.path + "/" + strconv.FormatUint(uint64(id), 10)
}

// CursorPage is one segment of a cursor-paginated read.
type CursorPage[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor"`
	HasMore    bool   `json:"hasMore"`
}

// Cursor reads the segment of path after the given cursor. An empty cursor starts at the beginning.
func Cursor[T any](ctx context.Context, c *Client, path, after string, limit int) (CursorPage[T], error) {
	q := url.Values{}
	if after != "" {
		q.Set("after", after)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out CursorPage[T]
	err := c.Do(ctx, http.MethodGet, path, q, nil, &out)
	return out, err
}
