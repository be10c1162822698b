package listview

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type person struct {
	ID      int
	Name    string
	Account string
	Hired   *time.Time
}

func personComposer() Composer[person] {
	return Composer[person]{
		RowID: func(p person) string { return strconv.Itoa(p.ID) },
		Columns: []Column[person]{
			{ID: "name", Header: "Name", Value: func(p person) any { return p.Name }, Sortable: true, Width: 20},
			{ID: "account", Header: "Account", Value: func(p person) any { return p.Account }, Sortable: true},
			{ID: "hired_at", Header: "Hired", Value: func(p person) any { return p.Hired }},
			{ID: "upper", Header: "Shout", Value: func(p person) any { return p.Name },
				Format: func(v any) string { return v.(string) + "!" }},
		},
	}
}

func peoplePage(n int, total int64, page, pageSize int) Page[person] {
	items := make([]person, 0, n)
	for i := 0; i < n; i++ {
		id := (page-1)*pageSize + i + 1
		items = append(items, person{ID: id, Name: "p" + strconv.Itoa(id), Account: "acc"})
	}
	return Page[person]{Items: items, Total: total, Page: page, PageSize: pageSize, TotalPages: TotalPages(total, pageSize)}
}

func TestComposer_Compose(t *testing.T) {
	hired := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	comp := personComposer()
	ctrl := NewController(employeeSchema, Query{OrderBy: "name", OrderDirection: Asc})
	tr := NewTracker()
	page := Page[person]{
		Items:      []person{{ID: 1, Name: "ann", Account: "a1", Hired: &hired}, {ID: 2, Name: "bob", Account: "b2"}},
		Total:      2,
		Page:       1,
		PageSize:   10,
		TotalPages: 1,
	}
	tr.SetPage(comp.IDs(page.Items))
	tr.SetTotal(page.Total)
	tr.Toggle("2")

	got := comp.Compose(ctrl, tr, page, false)

	wantHeader := []HeaderCell{
		{ID: "name", Label: "Name", Width: 20, Sortable: true, Icon: SortAsc},
		{ID: "account", Label: "Account", Sortable: true, Icon: SortNone},
		{ID: "hired_at", Label: "Hired", Icon: SortNone},
		{ID: "upper", Label: "Shout", Icon: SortNone},
	}
	if diff := cmp.Diff(wantHeader, got.Columns); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	wantRows := []Row{
		{ID: "1", Cells: []string{"ann", "a1", "2024-03-01", "ann!"}},
		{ID: "2", Cells: []string{"bob", "b2", "", "bob!"}, Selected: true},
	}
	if diff := cmp.Diff(wantRows, got.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if got.Check != Indeterminate {
		t.Errorf("expected header check %v, got %v", Indeterminate, got.Check)
	}
	if got.Selected != 1 || got.Total != 2 {
		t.Errorf("expected selected=1 total=2, got selected=%d total=%d", got.Selected, got.Total)
	}
	if diff := cmp.Diff([]PageItem{P(1)}, got.Pages); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
	if got.Dimmed || got.InputsDisabled {
		t.Error("expected a settled, enabled table")
	}
}

func TestComposer_DimsWhileUpdatingButStaysInteractive(t *testing.T) {
	comp := personComposer()
	ctrl := NewController(employeeSchema, employeeSchema.Defaults())
	tr := NewTracker()
	page := peoplePage(10, 25, 1, 10)
	tr.SetPage(comp.IDs(page.Items))

	d := comp.Dispatch(ctrl, tr, page.TotalPages, ClickPage(2), false)
	if !d.Pending {
		t.Fatal("expected a pending update")
	}

	table := comp.Compose(ctrl, tr, page, false)
	if !table.Dimmed {
		t.Error("expected table to be dimmed while the update is pending")
	}
	if table.Page != 2 {
		t.Errorf("expected pagination control to show pending page 2, got %d", table.Page)
	}

	comp.Dispatch(ctrl, tr, page.TotalPages, ToggleRow("1"), false)
	if !tr.IsSelected("1") {
		t.Error("dimmed table must still accept input")
	}
}

func TestComposer_DispatchHeaderClicks(t *testing.T) {
	comp := personComposer()

	tests := []struct {
		name        string
		clicks      []string
		wantOrderBy string
		wantDir     Direction
	}{
		{name: "new column desc", clicks: []string{"name"}, wantOrderBy: "name", wantDir: Desc},
		{name: "second click asc", clicks: []string{"name", "name"}, wantOrderBy: "name", wantDir: Asc},
		{name: "switch column desc", clicks: []string{"name", "name", "account"}, wantOrderBy: "account", wantDir: Desc},
		{name: "unsortable ignored", clicks: []string{"hired_at"}, wantOrderBy: "id", wantDir: Desc},
		{name: "unknown ignored", clicks: []string{"nope"}, wantOrderBy: "id", wantDir: Desc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewController(employeeSchema, employeeSchema.Defaults().WithPage(3))
			tr := NewTracker()
			for _, col := range tt.clicks {
				if d := comp.Dispatch(ctrl, tr, 5, ClickHeader(col), false); d.Pending {
					ctrl.Commit(d.Token)
				}
			}
			got := ctrl.Committed()
			if got.OrderBy != tt.wantOrderBy || got.OrderDirection != tt.wantDir {
				t.Errorf("expected %s %s, got %s %s", tt.wantOrderBy, tt.wantDir, got.OrderBy, got.OrderDirection)
			}
			if len(tt.clicks) > 0 && tt.wantOrderBy != "id" && got.Page != 1 {
				t.Errorf("expected page reset to 1, got %d", got.Page)
			}
		})
	}
}

func TestComposer_DispatchPagingAndSearch(t *testing.T) {
	comp := personComposer()
	ctrl := NewController(employeeSchema, employeeSchema.Defaults())
	tr := NewTracker()

	d := comp.Dispatch(ctrl, tr, 3, JumpToPage("99"), false)
	if !d.Pending || ctrl.Pending().Page != 3 {
		t.Errorf("expected jump clamped to 3, got %d", ctrl.Pending().Page)
	}

	if d := comp.Dispatch(ctrl, tr, 3, JumpToPage("two"), false); d.Pending {
		t.Error("expected invalid jump input to be ignored")
	}

	d = comp.Dispatch(ctrl, tr, 3, Search("ann"), false)
	if d.Delay != DefaultSearchDelay {
		t.Errorf("expected typing delay %v, got %v", DefaultSearchDelay, d.Delay)
	}
	if ctrl.Pending().Page != 1 {
		t.Errorf("expected search to reset page, got %d", ctrl.Pending().Page)
	}
}

func TestComposer_DisabledInputsIgnoreEverything(t *testing.T) {
	comp := personComposer()
	ctrl := NewController(employeeSchema, employeeSchema.Defaults())
	tr := NewTracker()
	tr.SetPage([]string{"1"})

	actions := []Action{ClickHeader("name"), ClickPage(2), Search("x"), ToggleRow("1"), ToggleAllRows(), SelectAllMatchingRows()}
	for _, a := range actions {
		if d := comp.Dispatch(ctrl, tr, 3, a, true); d.Pending {
			t.Errorf("action %v produced an update while disabled", a.Kind)
		}
	}
	if ctrl.IsUpdating() || tr.SelectedCount() != 0 {
		t.Error("state changed while inputs were disabled")
	}

	table := comp.Compose(ctrl, tr, Page[person]{}, true)
	if !table.InputsDisabled {
		t.Error("expected InputsDisabled in the render model")
	}
	if table.TotalPages != 1 {
		t.Errorf("expected at least one page, got %d", table.TotalPages)
	}
}

func TestFormatValue(t *testing.T) {
	var nilTime *time.Time
	tests := []struct {
		in   any
		want string
	}{
		{in: nil, want: ""},
		{in: "x", want: "x"},
		{in: 42, want: "42"},
		{in: nilTime, want: ""},
		{in: time.Time{}, want: ""},
		{in: time.Date(2023, 12, 31, 8, 0, 0, 0, time.UTC), want: "2023-12-31"},
		{in: Asc, want: "ASC"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
