package pkg

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
)

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// FilterField binds a view filter to a column.
type FilterField struct {
	Column string
	// ID requires the value to be a positive integer.
	ID bool
	// Apply replaces the column equality when the filter needs more than that.
	Apply func(db *gorm.DB, value string) *gorm.DB
}

// ListSpec maps a list view onto a table: which columns the search term looks
// at and how each view filter is applied. Sortable names of the schema are
// used as column names unless Columns says otherwise.
type ListSpec struct {
	Schema  listview.Schema
	Columns map[string]string
	Search  []string
	Filters map[string]FilterField
}

func (s ListSpec) column(name string) string {
	if col, ok := s.Columns[name]; ok {
		return col
	}
	return name
}

// ParseQuery reads the list query of the request, falling back to the schema
// defaults for anything missing or invalid.
func ParseQuery(c *gin.Context, schema listview.Schema) listview.Query {
	return schema.Parse(c.Request.URL.Query())
}

// ParseID reads the ":id" path parameter.
func ParseID(c *gin.Context) (uint, error) {
	return parseUint(c.Param("id"))
}

func parseUint(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 || id > uint64(^uint(0)) {
		return 0, domain.Invalid(fmt.Sprintf("invalid id: %s", s))
	}
	return uint(id), nil
}

// BulkDeleteRequest is the body of a bulk delete. The search term and filters
// scope an AllExcept selection to the rows the client was looking at.
type BulkDeleteRequest struct {
	Selection  listview.Selection `json:"selection"`
	SearchTerm string             `json:"searchTerm"`
	Filters    map[string]string  `json:"filters"`
}

// BindBulkDelete reads a bulk delete body. Filters the schema does not know are
// dropped. On failure it writes the response and returns false.
func BindBulkDelete(c *gin.Context, schema listview.Schema) (listview.Query, listview.Selection, bool) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, domain.Invalid("invalid bulk delete request"))
		return listview.Query{}, listview.Selection{}, false
	}
	q := schema.Defaults().WithSearch(req.SearchTerm)
	for _, name := range schema.Filters {
		if v := strings.TrimSpace(req.Filters[name]); v != "" {
			q = q.WithFilter(name, v)
		}
	}
	return q, req.Selection, true
}

// Search returns a GORM scope matching term case-insensitively against any of
// columns. An empty term matches everything.
func Search(columns []string, term string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		conds := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, col := range columns {
			if !validFieldName.MatchString(col) {
				continue
			}
			conds = append(conds, "LOWER("+col+") LIKE ? ESCAPE '\\'")
			args = append(args, pattern)
		}
		if len(conds) == 0 {
			return db
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Order returns a GORM scope that applies ORDER BY for q. A column the schema
// does not list as sortable falls back to the default ordering. Rows with equal
// sort values are ordered by id so pages do not overlap.
func Order(spec ListSpec, q listview.Query) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		orderBy, dir := q.OrderBy, q.OrderDirection
		if !spec.Schema.IsSortable(orderBy) {
			def := spec.Schema.Defaults()
			orderBy, dir = def.OrderBy, def.OrderDirection
		}
		if dir != listview.Asc {
			dir = listview.Desc
		}
		col := spec.column(orderBy)
		if col == "" || !validFieldName.MatchString(col) {
			return db.Order("id " + string(dir))
		}
		db = db.Order(col + " " + string(dir))
		if col != "id" {
			db = db.Order("id " + string(dir))
		}
		return db
	}
}

// Filter returns a GORM scope that applies the view filters of q. Filters the
// spec does not declare are ignored; an ID filter with a malformed value fails
// the query with a validation error.
func Filter(spec ListSpec, q listview.Query) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for name, value := range q.Filters {
			f, ok := spec.Filters[name]
			if !ok || value == "" {
				continue
			}
			if f.Apply != nil {
				db = f.Apply(db, value)
				continue
			}
			if !validFieldName.MatchString(f.Column) {
				continue
			}
			if f.ID {
				id, err := parseUint(value)
				if err != nil {
					_ = db.AddError(domain.Invalid("invalid " + name + ": " + value))
					return db
				}
				db = db.Where(f.Column+" = ?", id)
				continue
			}
			db = db.Where(f.Column+" = ?", value)
		}
		return db
	}
}

// Selected returns a GORM scope restricting rows to the effective selection.
// An empty OnlyThese selection matches nothing.
func Selected(sel listview.Selection) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		ids := make([]uint, 0, len(sel.IDs()))
		for _, raw := range sel.IDs() {
			id, err := parseUint(raw)
			if err != nil {
				_ = db.AddError(err)
				return db
			}
			ids = append(ids, id)
		}
		if sel.IsAllExcept() {
			if len(ids) == 0 {
				return db
			}
			return db.Where("id NOT IN ?", ids)
		}
		if len(ids) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where("id IN ?", ids)
	}
}
