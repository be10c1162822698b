package listview

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection parses "asc"/"desc" in any case. ok is false for anything else.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Asc):
		return Asc, true
	case string(Desc):
		return Desc, true
	}
	return "", false
}

// Flip returns the opposite direction. Anything that is not DESC flips to DESC.
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// URL parameter names of the query state.
const (
	ParamPage           = "page"
	ParamPageSize       = "pageSize"
	ParamOrderBy        = "orderBy"
	ParamOrderDirection = "orderDirection"
	ParamSearchTerm     = "searchTerm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var reservedParams = []string{ParamPage, ParamPageSize, ParamOrderBy, ParamOrderDirection, ParamSearchTerm}

// Query is the parameter set of one list view. It doubles as the cache key of
// the remote fetcher and as the query string of the view's URL.
type Query struct {
	Page           int
	PageSize       int
	OrderBy        string
	OrderDirection Direction
	SearchTerm     string
	Filters        map[string]string
}

// Schema describes what a list view accepts: its sortable columns, defaults and
// view-specific filter names.
type Schema struct {
	Sortable         []string
	DefaultOrderBy   string
	DefaultDirection Direction
	DefaultPageSize  int
	Filters          []string
}

// Defaults returns the initial query of the view.
func (s Schema) Defaults() Query {
	dir := s.DefaultDirection
	if dir == "" {
		dir = Desc
	}
	size := s.DefaultPageSize
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return Query{
		Page:           1,
		PageSize:       size,
		OrderBy:        s.DefaultOrderBy,
		OrderDirection: dir,
	}
}

// Parse reads a query from URL values. Invalid or unknown values fall back to
// the schema defaults; unknown filters are dropped.
func (s Schema) Parse(v url.Values) Query {
	q := s.Defaults()
	if p, err := strconv.Atoi(v.Get(ParamPage)); err == nil {
		q.Page = p
	}
	if n, err := strconv.Atoi(v.Get(ParamPageSize)); err == nil {
		q.PageSize = n
	}
	if ob := strings.TrimSpace(v.Get(ParamOrderBy)); ob != "" {
		q.OrderBy = ob
	}
	if d, ok := ParseDirection(v.Get(ParamOrderDirection)); ok {
		q.OrderDirection = d
	}
	q.SearchTerm = v.Get(ParamSearchTerm)
	for _, name := range s.Filters {
		if val := strings.TrimSpace(v.Get(name)); val != "" {
			if q.Filters == nil {
				q.Filters = make(map[string]string)
			}
			q.Filters[name] = val
		}
	}
	return s.Normalize(q)
}

// Normalize clamps q into the bounds of the schema. Filter values are trimmed
// and empty ones dropped, as Parse does.
func (s Schema) Normalize(q Query) Query {
	def := s.Defaults()
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.PageSize < 1:
		q.PageSize = def.PageSize
	case q.PageSize > MaxPageSize:
		q.PageSize = MaxPageSize
	}
	if !s.IsSortable(q.OrderBy) {
		q.OrderBy = def.OrderBy
	}
	if d, ok := ParseDirection(string(q.OrderDirection)); ok {
		q.OrderDirection = d
	} else {
		q.OrderDirection = def.OrderDirection
	}
	if len(q.Filters) > 0 {
		kept := make(map[string]string, len(q.Filters))
		for k, v := range q.Filters {
			if v = strings.TrimSpace(v); v != "" && slices.Contains(s.Filters, k) {
				kept[k] = v
			}
		}
		q.Filters = kept
	}
	if len(q.Filters) == 0 {
		q.Filters = nil
	}
	return q
}

// IsSortable reports whether column can be used as orderBy.
func (s Schema) IsSortable(column string) bool {
	return slices.Contains(s.Sortable, column)
}

// Values returns the URL form of q. Empty search terms and filters are omitted.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set(ParamPage, strconv.Itoa(q.Page))
	v.Set(ParamPageSize, strconv.Itoa(q.PageSize))
	if q.OrderBy != "" {
		v.Set(ParamOrderBy, q.OrderBy)
	}
	if q.OrderDirection != "" {
		v.Set(ParamOrderDirection, string(q.OrderDirection))
	}
	if q.SearchTerm != "" {
		v.Set(ParamSearchTerm, q.SearchTerm)
	}
	for k, val := range q.Filters {
		if val == "" || slices.Contains(reservedParams, k) {
			continue
		}
		v.Set(k, val)
	}
	return v
}

// Encode returns the canonical query string of q (keys sorted).
func (q Query) Encode() string {
	return q.Values().Encode()
}

// Key returns the structural identity of q. Two queries with equal fields have
// equal keys regardless of map iteration order.
func (q Query) Key() string {
	return q.Encode()
}

// Equal reports whether q and o are structurally equal.
func (q Query) Equal(o Query) bool {
	return q.Page == o.Page &&
		q.PageSize == o.PageSize &&
		q.OrderBy == o.OrderBy &&
		q.OrderDirection == o.OrderDirection &&
		q.SameFilter(o)
}

// SameFilter reports whether q and o select the same rows, ignoring paging and order.
func (q Query) SameFilter(o Query) bool {
	if q.SearchTerm != o.SearchTerm || len(q.Filters) != len(o.Filters) {
		return false
	}
	return maps.Equal(q.Filters, o.Filters)
}

// Filter returns the value of a view-specific filter.
func (q Query) Filter(name string) string {
	return q.Filters[name]
}

// Offset is the row offset of the current page.
func (q Query) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// WithPage moves to page p.
func (q Query) WithPage(p int) Query {
	if p < 1 {
		p = 1
	}
	q.Page = p
	return q
}

// WithPageSize changes the page size and returns to the first page.
func (q Query) WithPageSize(n int) Query {
	if n == q.PageSize {
		return q
	}
	q.PageSize = n
	q.Page = 1
	return q
}

// WithSearch changes the search term. A new term returns to the first page.
func (q Query) WithSearch(term string) Query {
	if term == q.SearchTerm {
		return q
	}
	q.SearchTerm = term
	q.Page = 1
	return q
}

// WithOrder changes the ordering. A new ordering returns to the first page.
func (q Query) WithOrder(orderBy string, dir Direction) Query {
	if orderBy == q.OrderBy && dir == q.OrderDirection {
		return q
	}
	q.OrderBy = orderBy
	q.OrderDirection = dir
	q.Page = 1
	return q
}

// WithFilter sets or clears (blank value) a view filter. A change returns to the
// first page.
func (q Query) WithFilter(name, value string) Query {
	value = strings.TrimSpace(value)
	if q.Filters[name] == value {
		return q
	}
	filters := maps.Clone(q.Filters)
	if filters == nil {
		filters = make(map[string]string)
	}
	if value == "" {
		delete(filters, name)
	} else {
		filters[name] = value
	}
	if len(filters) == 0 {
		filters = nil
	}
	q.Filters = filters
	q.Page = 1
	return q
}

// SortBy applies a click on the header of column.
func (q Query) SortBy(column string) Query {
	sc := HandleSortChange(column, q.OrderBy, q.OrderDirection)
	q.OrderBy = sc.OrderBy
	q.OrderDirection = sc.OrderDirection
	q.Page = sc.Page
	return q
}

// SortChange is the outcome of a header click.
type SortChange struct {
	OrderBy        string
	OrderDirection Direction
	Page           int
}

// HandleSortChange computes the new ordering after a click on columnID. Clicking
// the active column flips its direction; clicking another column makes it active
// in descending order. The page always resets to 1.
func HandleSortChange(columnID, currentOrderBy string, currentDirection Direction) SortChange {
	if columnID == currentOrderBy {
		return SortChange{OrderBy: columnID, OrderDirection: currentDirection.Flip(), Page: 1}
	}
	return SortChange{OrderBy: columnID, OrderDirection: Desc, Page: 1}
}
