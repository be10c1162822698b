package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/client"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/mutation"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/querycache"
)

// screen is a list screen as seen by the root model.
type screen interface {
	Name() string
	Title() string
	// enter is called when the screen becomes visible.
	enter() tea.Cmd
	update(msg tea.Msg) tea.Cmd
	render(width int) string
	// invalidated marks the displayed page stale when prefix covers it.
	invalidated(prefix string) bool
	// capturing reports whether keys go to an input or a prompt.
	capturing() bool
	// leave drops the selection when the screen is closed; the query is kept.
	leave()
	reset()
}

// env holds what every screen shares.
type env struct {
	client      *client.Client
	cache       *querycache.Service
	bridge      *mutation.Bridge
	log         *slog.Logger
	timeout     time.Duration
	pageSize    int
	searchDelay time.Duration
}

func (e *env) context() (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), e.timeout)
}

type inputMode int

const (
	modeNormal inputMode = iota
	modeSearch
	modeJump
	modeConfirm
)

type listScreen[T any] struct {
	def  entity[T]
	env  *env
	res  client.Resource[T]
	view *listview.View[T]

	table    listview.Table
	cursor   int
	mode     inputMode
	input    textinput.Model
	help     help.Model
	inflight string
	confirm  int64
}

func newListScreen[T any](e *env, def entity[T]) *listScreen[T] {
	s := &listScreen[T]{
		def:   def,
		env:   e,
		res:   client.NewResource[T](e.client, "/"+def.name),
		input: textinput.New(),
		help:  help.New(),
	}
	s.reset()
	return s
}

func (s *listScreen[T]) Name() string  { return s.def.name }
func (s *listScreen[T]) Title() string { return s.def.title }

// reset discards the query, selection and rows, e.g. after a logout.
func (s *listScreen[T]) reset() {
	initial := s.def.schema.Defaults()
	if s.env.pageSize > 0 {
		initial = initial.WithPageSize(s.env.pageSize)
	}
	s.view = listview.NewView(s.def.schema, initial, listview.Composer[T]{
		Columns: s.def.columns,
		RowID:   s.def.rowID,
	})
	if s.env.searchDelay > 0 {
		s.view.Ctrl.SetSearchDelay(s.env.searchDelay)
	}
	s.cursor = 0
	s.mode = modeNormal
	s.inflight = ""
	s.input.Blur()
	s.refresh()
}

func (s *listScreen[T]) capturing() bool { return s.mode != modeNormal }

func (s *listScreen[T]) leave() {
	s.view.Tracker.ClearAll()
	s.mode = modeNormal
	s.input.Blur()
	s.refresh()
}

func (s *listScreen[T]) enter() tea.Cmd {
	return s.fetch()
}

func (s *listScreen[T]) invalidated(prefix string) bool {
	own := querycache.ListPrefix(s.def.name)
	if !strings.HasPrefix(own, prefix) && !strings.HasPrefix(prefix, own) {
		return false
	}
	s.view.Invalidate()
	s.inflight = ""
	return true
}

// fetch loads the committed query unless its page is shown or on its way.
func (s *listScreen[T]) fetch() tea.Cmd {
	if !s.view.NeedsFetch() {
		return nil
	}
	key := s.view.Key()
	if s.inflight == key {
		return nil
	}
	s.inflight = key
	q := s.view.Ctrl.Committed()
	cacheKey := querycache.ListKey(s.def.name, q)
	name, res, cache, e := s.def.name, s.res, s.env.cache, s.env

	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				e.log.Error("list fetch panicked", "entity", name, "panic", r, "stack", string(debug.Stack()))
				msg = pageMsg[T]{entity: name, key: key, err: fmt.Errorf("load %s: %v", name, r)}
			}
		}()
		ctx, cancel := e.context()
		defer cancel()
		page, err := querycache.GetOrFetch(ctx, cache, cacheKey, func(ctx context.Context) (listview.Page[T], error) {
			return res.List(ctx, q)
		})
		return pageMsg[T]{entity: name, key: key, page: page, err: err}
	}
}

// refresh recomposes the table. A panic while composing is shown as the
// failure of the committed query.
func (s *listScreen[T]) refresh() {
	defer func() {
		if r := recover(); r != nil {
			s.env.log.Error("list render panicked", "entity", s.def.name, "panic", r, "stack", string(debug.Stack()))
			s.view.Fail(s.view.Key(), fmt.Errorf("show %s: %v", s.def.name, r))
			s.table = listview.Table{}
		}
	}()
	s.table = s.view.Table()
	if n := len(s.table.Rows); s.cursor >= n {
		s.cursor = max(n-1, 0)
	}
}

func (s *listScreen[T]) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case pageMsg[T]:
		return s.receive(msg)
	case commitMsg:
		if s.view.Commit(msg.token) {
			s.refresh()
			return s.fetch()
		}
		return nil
	case deletedMsg:
		s.view.SetBusy(false)
		if msg.err != nil {
			s.refresh()
			if client.IsUnauthorized(msg.err) {
				return emit(sessionExpiredMsg{entity: s.def.name})
			}
			return nil
		}
		s.view.Tracker.ClearAll()
		s.view.Invalidate()
		s.inflight = ""
		s.refresh()
		return s.fetch()
	case tea.KeyMsg:
		return s.key(msg)
	}
	return nil
}

func (s *listScreen[T]) receive(msg pageMsg[T]) tea.Cmd {
	if msg.key == s.inflight {
		s.inflight = ""
	}
	if msg.err != nil {
		if !s.view.Fail(msg.key, msg.err) {
			return nil
		}
		s.refresh()
		switch {
		case client.IsUnauthorized(msg.err):
			s.view.Invalidate()
			return emit(sessionExpiredMsg{entity: s.def.name})
		case client.IsForbidden(msg.err):
			s.view.Invalidate()
			return emit(forbiddenMsg{entity: s.def.name, err: msg.err})
		}
		s.env.log.Warn("list fetch failed", "entity", s.def.name, "error", msg.err)
		return nil
	}
	if !s.view.Accept(msg.key, msg.page) {
		s.env.log.Debug("stale page dropped", "entity", s.def.name, "key", msg.key)
		return nil
	}
	s.refresh()
	return nil
}

func (s *listScreen[T]) key(msg tea.KeyMsg) tea.Cmd {
	switch s.mode {
	case modeSearch:
		return s.searchKey(msg)
	case modeJump:
		return s.jumpKey(msg)
	case modeConfirm:
		s.mode = modeNormal
		if msg.String() == "y" || msg.String() == "Y" {
			return s.deleteSelected()
		}
		return nil
	}

	k := listKeyMap
	switch {
	case key.Matches(msg, k.Up):
		if s.cursor > 0 {
			s.cursor--
		}
		return nil
	case key.Matches(msg, k.Down):
		if s.cursor < len(s.table.Rows)-1 {
			s.cursor++
		}
		return nil
	case key.Matches(msg, k.Reload):
		s.env.cache.Invalidate(querycache.ListPrefix(s.def.name))
		s.view.Invalidate()
		s.inflight = ""
		return s.fetch()
	}

	if s.view.Busy() {
		return nil
	}
	switch {
	case key.Matches(msg, k.Prev):
		return s.dispatch(listview.ClickPage(s.table.Page - 1))
	case key.Matches(msg, k.Next):
		return s.dispatch(listview.ClickPage(s.table.Page + 1))
	case key.Matches(msg, k.Flip):
		return s.dispatch(listview.ClickHeader(s.view.Ctrl.Pending().OrderBy))
	case key.Matches(msg, k.Sort):
		return s.dispatch(listview.ClickHeader(s.nextSortColumn()))
	case key.Matches(msg, k.Search):
		s.mode = modeSearch
		s.input.Placeholder = "search"
		s.input.SetValue(s.view.Ctrl.Pending().SearchTerm)
		s.input.CursorEnd()
		return s.input.Focus()
	case key.Matches(msg, k.Jump):
		s.mode = modeJump
		s.input.Placeholder = fmt.Sprintf("1-%d", s.table.TotalPages)
		s.input.SetValue("")
		return s.input.Focus()
	case key.Matches(msg, k.Toggle):
		if s.cursor < len(s.table.Rows) {
			return s.dispatch(listview.ToggleRow(s.table.Rows[s.cursor].ID))
		}
	case key.Matches(msg, k.Page):
		return s.dispatch(listview.ToggleAllRows())
	case key.Matches(msg, k.All):
		return s.dispatch(listview.SelectAllMatchingRows())
	case key.Matches(msg, k.Clear):
		return s.dispatch(listview.ClearSelection())
	case key.Matches(msg, k.Delete):
		sel := s.view.Tracker.Selection()
		if sel.IsEmpty() {
			return emit(flashMsg{note: mutation.Notification{Level: mutation.Failure, Title: "Delete " + s.def.name, Message: "Nothing selected"}})
		}
		s.confirm = sel.Count(s.view.Page().Total)
		s.mode = modeConfirm
	}
	return nil
}

func (s *listScreen[T]) searchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		s.mode = modeNormal
		s.input.Blur()
		s.view.Flush()
		s.refresh()
		return s.fetch()
	case tea.KeyEsc:
		s.mode = modeNormal
		s.input.Blur()
		return nil
	}
	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() == before {
		return cmd
	}
	return tea.Batch(cmd, s.dispatch(listview.Search(s.input.Value())))
}

func (s *listScreen[T]) jumpKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		s.mode = modeNormal
		s.input.Blur()
		return s.dispatch(listview.JumpToPage(s.input.Value()))
	case tea.KeyEsc:
		s.mode = modeNormal
		s.input.Blur()
		return nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

// dispatch applies a and schedules the commit of the update it started.
func (s *listScreen[T]) dispatch(a listview.Action) tea.Cmd {
	d := s.view.Dispatch(a)
	defer s.refresh()
	if !d.Pending {
		return nil
	}
	if d.Delay <= 0 {
		if s.view.Commit(d.Token) {
			s.refresh()
			return s.fetch()
		}
		return nil
	}
	name, tok := s.def.name, d.Token
	return tea.Tick(d.Delay, func(time.Time) tea.Msg {
		return commitMsg{entity: name, token: tok}
	})
}

// nextSortColumn returns the sortable column after the current sort column.
func (s *listScreen[T]) nextSortColumn() string {
	var sortable []string
	for _, col := range s.def.columns {
		if col.Sortable && s.def.schema.IsSortable(col.ID) {
			sortable = append(sortable, col.ID)
		}
	}
	if len(sortable) == 0 {
		return ""
	}
	current := s.view.Ctrl.Pending().OrderBy
	for i, id := range sortable {
		if id == current {
			return sortable[(i+1)%len(sortable)]
		}
	}
	return sortable[0]
}

func (s *listScreen[T]) deleteSelected() tea.Cmd {
	sel := s.view.Tracker.Selection()
	q := s.view.Ctrl.Committed()
	prefixes := []string{querycache.Prefix(s.def.name)}
	for _, r := range s.def.related {
		prefixes = append(prefixes, querycache.ListPrefix(r))
	}
	m := mutation.Mutation{
		Name:           "Delete " + s.def.name,
		Invalidate:     prefixes,
		SuccessMessage: fmt.Sprintf("Deleted %d %s", s.confirm, s.def.name),
	}
	s.view.SetBusy(true)
	s.refresh()

	name, res, e := s.def.name, s.res, s.env
	return func() tea.Msg {
		ctx, cancel := e.context()
		defer cancel()
		err := e.bridge.Run(ctx, m, func(ctx context.Context) error {
			_, err := res.Delete(ctx, sel, q)
			return err
		})
		return deletedMsg{entity: name, err: err}
	}
}

func (s *listScreen[T]) render(width int) string {
	var b strings.Builder
	t := s.table

	b.WriteString(titleStyle.Render(s.def.title))
	fmt.Fprintf(&b, "  %d rows", t.Total)
	if t.Selected > 0 {
		b.WriteString(selectedStyle.Render(fmt.Sprintf("  %d selected", t.Selected)))
	}
	if t.SearchTerm != "" && s.mode != modeSearch {
		fmt.Fprintf(&b, "  search: %q", t.SearchTerm)
	}
	if t.Dimmed || s.inflight != "" {
		b.WriteString(dimStyle.Render("  loading…"))
	}
	b.WriteString("\n\n")

	if err := s.view.Err(); err != nil {
		msg := err.Error()
		var ce *client.Error
		if errors.As(err, &ce) && ce.Message != "" {
			msg = ce.Message
		}
		b.WriteString(panelStyle.Render(fmt.Sprintf("Could not load %s.\n%s\n\nPress r to retry.", s.def.name, msg)))
		b.WriteString("\n")
	} else {
		b.WriteString(s.renderTable(width))
	}

	b.WriteString("\n")
	b.WriteString(renderPages(t))
	b.WriteString("\n")

	switch s.mode {
	case modeSearch:
		b.WriteString("search: " + s.input.View())
	case modeJump:
		b.WriteString("go to page: " + s.input.View())
	case modeConfirm:
		b.WriteString(confirmStyle.Render(fmt.Sprintf("Delete %d %s? (y/N)", s.confirm, s.def.name)))
	default:
		s.help.Width = width
		b.WriteString(s.help.ShortHelpView(listKeyMap.short()))
	}
	return b.String()
}

func (s *listScreen[T]) renderTable(width int) string {
	t := s.table
	var b strings.Builder

	b.WriteString(checkbox(t.Check) + " ")
	for _, col := range t.Columns {
		label := col.Label
		switch col.Icon {
		case listview.SortAsc:
			label += " ▲"
		case listview.SortDesc:
			label += " ▼"
		}
		b.WriteString(headerStyle.Render(fit(label, col.Width)) + " ")
	}
	b.WriteString("\n")

	if len(t.Rows) == 0 {
		b.WriteString(dimStyle.Render("  no rows"))
		b.WriteString("\n")
	}
	for i, row := range t.Rows {
		var line strings.Builder
		mark := "[ ]"
		if row.Selected {
			mark = "[x]"
		}
		line.WriteString(mark + " ")
		for j, cell := range row.Cells {
			line.WriteString(fit(cell, t.Columns[j].Width) + " ")
		}
		text := line.String()
		if width > 0 {
			text = fit(text, width)
		}
		switch {
		case i == s.cursor && s.mode == modeNormal:
			text = cursorStyle.Render(text)
		case row.Selected:
			text = selectedStyle.Render(text)
		}
		if t.Dimmed || t.InputsDisabled {
			text = dimStyle.Render(text)
		}
		b.WriteString(text + "\n")
	}
	return b.String()
}

func checkbox(c listview.CheckState) string {
	switch c {
	case listview.Checked:
		return "[x]"
	case listview.Indeterminate:
		return "[-]"
	default:
		return "[ ]"
	}
}

func renderPages(t listview.Table) string {
	parts := make([]string, 0, len(t.Pages))
	for _, p := range t.Pages {
		switch {
		case p.Ellipsis:
			parts = append(parts, ellipsis)
		case p.Page == t.Page:
			parts = append(parts, titleStyle.Render(fmt.Sprintf("[%d]", p.Page)))
		default:
			parts = append(parts, p.String())
		}
	}
	return fmt.Sprintf("page %d/%d  %s", t.Page, t.TotalPages, strings.Join(parts, " "))
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
