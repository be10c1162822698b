package listview

import (
	"fmt"
	"time"
)

// Column describes one column of a list view. Value extracts the raw cell value;
// Format, when set, turns it into text instead of FormatValue.
type Column[T any] struct {
	ID       string
	Header   string
	Value    func(T) any
	Format   func(any) string
	Width    int
	Sortable bool
}

// Cell renders the column for row.
func (c Column[T]) Cell(row T) string {
	if c.Value == nil {
		return ""
	}
	v := c.Value(row)
	if c.Format != nil {
		return c.Format(v)
	}
	return FormatValue(v)
}

// FormatValue is the default cell formatter.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(time.DateOnly)
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return x.Format(time.DateOnly)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// SortIcon is the sort indicator of a header cell.
type SortIcon int

const (
	SortNone SortIcon = iota
	SortAsc
	SortDesc
)

func (s SortIcon) String() string {
	switch s {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return "none"
	}
}

// HeaderCell is the render model of a column header.
type HeaderCell struct {
	ID       string
	Label    string
	Width    int
	Sortable bool
	Icon     SortIcon
}

// Row is the render model of one data row.
type Row struct {
	ID       string
	Cells    []string
	Selected bool
}

// Table is a render-ready list view: header, rows, pagination control and the
// visual state flags.
type Table struct {
	Columns        []HeaderCell
	Check          CheckState
	Rows           []Row
	Pages          []PageItem
	Page           int
	TotalPages     int
	Total          int64
	Selected       int64
	SearchTerm     string
	Dimmed         bool
	InputsDisabled bool
}

// Page is one page of rows as returned by a remote list fetcher.
type Page[T any] struct {
	Items      []T
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// Composer turns rows and list state into a Table and routes user actions back
// into the controller and tracker.
type Composer[T any] struct {
	Columns []Column[T]
	RowID   func(T) string
}

// Compose builds the table for page. Header icons, the search term and the
// current page come from the pending query so input shows up immediately; the
// rows are those of the last fetched page, dimmed while an update is pending.
func (c Composer[T]) Compose(ctrl *Controller, tracker *Tracker, page Page[T], disableInputs bool) Table {
	pending := ctrl.Pending()
	t := Table{
		Columns:        make([]HeaderCell, 0, len(c.Columns)),
		Check:          tracker.HeaderState(),
		Rows:           make([]Row, 0, len(page.Items)),
		Page:           pending.Page,
		TotalPages:     page.TotalPages,
		Total:          page.Total,
		Selected:       tracker.SelectedCount(),
		SearchTerm:     pending.SearchTerm,
		Dimmed:         ctrl.IsUpdating(),
		InputsDisabled: disableInputs,
	}
	if t.TotalPages < 1 {
		t.TotalPages = 1
	}
	t.Pages = GetPages(t.TotalPages, t.Page)

	for _, col := range c.Columns {
		cell := HeaderCell{ID: col.ID, Label: col.Header, Width: col.Width, Sortable: col.Sortable}
		if col.Sortable && pending.OrderBy == col.ID {
			cell.Icon = SortDesc
			if pending.OrderDirection == Asc {
				cell.Icon = SortAsc
			}
		}
		t.Columns = append(t.Columns, cell)
	}

	for _, item := range page.Items {
		id := c.RowID(item)
		row := Row{ID: id, Cells: make([]string, len(c.Columns)), Selected: tracker.IsSelected(id)}
		for i, col := range c.Columns {
			row.Cells[i] = col.Cell(item)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// IDs returns the row ids of items in order.
func (c Composer[T]) IDs(items []T) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = c.RowID(item)
	}
	return ids
}

func (c Composer[T]) column(id string) (Column[T], bool) {
	for _, col := range c.Columns {
		if col.ID == id {
			return col, true
		}
	}
	return Column[T]{}, false
}

// ActionKind enumerates user interactions with a list view.
type ActionKind int

const (
	ActClickHeader ActionKind = iota + 1
	ActClickPage
	ActJumpToPage
	ActSearch
	ActToggleRow
	ActToggleAll
	ActSelectAllMatching
	ActClearSelection
)

// Action is one user interaction. Only the fields relevant to Kind are set.
type Action struct {
	Kind   ActionKind
	Column string
	Page   int
	Text   string
	RowID  string
}

func ClickHeader(column string) Action { return Action{Kind: ActClickHeader, Column: column} }
func ClickPage(page int) Action        { return Action{Kind: ActClickPage, Page: page} }
func JumpToPage(text string) Action    { return Action{Kind: ActJumpToPage, Text: text} }
func Search(term string) Action        { return Action{Kind: ActSearch, Text: term} }
func ToggleRow(id string) Action       { return Action{Kind: ActToggleRow, RowID: id} }
func ToggleAllRows() Action            { return Action{Kind: ActToggleAll} }
func SelectAllMatchingRows() Action    { return Action{Kind: ActSelectAllMatching} }
func ClearSelection() Action           { return Action{Kind: ActClearSelection} }

// Dispatched reports what an action did. When Pending is true the caller must
// schedule Commit(Token) after Delay.
type Dispatched struct {
	Pending bool
	Token   Token
	Delay   time.Duration
}

// Dispatch applies a to the controller or tracker. Everything is ignored while
// inputs are disabled. Header clicks on columns that are not sortable do nothing.
func (c Composer[T]) Dispatch(ctrl *Controller, tracker *Tracker, totalPages int, a Action, disabled bool) Dispatched {
	if disabled {
		return Dispatched{}
	}
	var tok Token
	kind := InputClick
	switch a.Kind {
	case ActClickHeader:
		col, ok := c.column(a.Column)
		if !ok || !col.Sortable || !ctrl.Schema().IsSortable(col.ID) {
			return Dispatched{}
		}
		tok = ctrl.SortBy(col.ID)
	case ActClickPage:
		tok = ctrl.SetPage(ClampPage(a.Page, totalPages))
	case ActJumpToPage:
		page, ok := ParseJump(a.Text, totalPages)
		if !ok {
			return Dispatched{}
		}
		tok = ctrl.SetPage(page)
	case ActSearch:
		kind = InputTyping
		tok = ctrl.SetSearch(a.Text)
	case ActToggleRow:
		tracker.Toggle(a.RowID)
		return Dispatched{}
	case ActToggleAll:
		tracker.ToggleAll()
		return Dispatched{}
	case ActSelectAllMatching:
		tracker.SelectAllMatching()
		return Dispatched{}
	case ActClearSelection:
		tracker.ClearAll()
		return Dispatched{}
	default:
		return Dispatched{}
	}
	return Dispatched{Pending: true, Token: tok, Delay: ctrl.Delay(kind)}
}
