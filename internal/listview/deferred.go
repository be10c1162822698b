package listview

import "time"

// Token identifies one pending update. Only the latest token can commit.
type Token uint64

// InputKind classifies an update for the commit delay policy.
type InputKind int

const (
	// InputClick covers discrete actions: page, sort, page size, filter.
	InputClick InputKind = iota
	// InputTyping covers keystrokes in the search box.
	InputTyping
)

// DefaultSearchDelay is how long typed search input waits before committing.
const DefaultSearchDelay = 300 * time.Millisecond

// Controller keeps the pending and committed query of a list view. Input is
// written to the pending query at once; the committed query, which is the one
// actually fetched, adopts it when the token of the latest update is committed.
// Intermediate updates whose tokens are superseded are never committed.
//
// A Controller is not safe for concurrent use.
type Controller struct {
	schema      Schema
	pending     Query
	committed   Query
	latest      Token
	searchDelay time.Duration
}

// NewController returns a controller whose pending and committed queries both
// equal the normalized initial query.
func NewController(schema Schema, initial Query) *Controller {
	q := schema.Normalize(initial)
	return &Controller{
		schema:      schema,
		pending:     q,
		committed:   q,
		searchDelay: DefaultSearchDelay,
	}
}

// SetSearchDelay overrides the debounce applied to typed input.
func (c *Controller) SetSearchDelay(d time.Duration) {
	c.searchDelay = d
}

func (c *Controller) Schema() Schema   { return c.schema }
func (c *Controller) Pending() Query   { return c.pending }
func (c *Controller) Committed() Query { return c.committed }

// IsUpdating reports whether the pending query has not been committed yet.
func (c *Controller) IsUpdating() bool {
	return !c.pending.Equal(c.committed)
}

// Update applies fn to the pending query and returns the token that commits it.
func (c *Controller) Update(fn func(Query) Query) Token {
	c.pending = c.schema.Normalize(fn(c.pending))
	c.latest++
	return c.latest
}

func (c *Controller) SetPage(p int) Token {
	return c.Update(func(q Query) Query { return q.WithPage(p) })
}

func (c *Controller) SetPageSize(n int) Token {
	return c.Update(func(q Query) Query { return q.WithPageSize(n) })
}

func (c *Controller) SetSearch(term string) Token {
	return c.Update(func(q Query) Query { return q.WithSearch(term) })
}

func (c *Controller) SetFilter(name, value string) Token {
	return c.Update(func(q Query) Query { return q.WithFilter(name, value) })
}

// SortBy applies a click on the header of column. Clicks on columns that are
// not sortable leave the query untouched but still return a fresh token.
func (c *Controller) SortBy(column string) Token {
	return c.Update(func(q Query) Query {
		if !c.schema.IsSortable(column) {
			return q
		}
		return q.SortBy(column)
	})
}

// Commit adopts the pending query if tok is the latest token. It returns false
// when tok has been superseded by a newer update.
func (c *Controller) Commit(tok Token) bool {
	if tok != c.latest {
		return false
	}
	c.committed = c.pending
	return true
}

// Flush commits the pending query regardless of outstanding tokens and
// invalidates them.
func (c *Controller) Flush() {
	c.latest++
	c.committed = c.pending
}

// AdoptPage moves both queries to page p without starting a new update. It is
// used when the server clamped a page that no longer exists.
func (c *Controller) AdoptPage(p int) {
	if p < 1 {
		p = 1
	}
	inSync := c.pending.Equal(c.committed)
	c.committed.Page = p
	if inSync {
		c.pending.Page = p
	}
}

// Delay returns how long an update of the given kind waits before committing.
func (c *Controller) Delay(kind InputKind) time.Duration {
	if kind == InputTyping {
		return c.searchDelay
	}
	return 0
}
