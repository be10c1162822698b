package listview

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// SelectionMode tells how the ids of a Selection are interpreted.
type SelectionMode string

const (
	// ModeOnly selects exactly the listed ids.
	ModeOnly SelectionMode = "only"
	// ModeAllExcept selects every row matching the filter except the listed ids.
	ModeAllExcept SelectionMode = "all_except"
)

// Selection is the set of chosen rows of a list view. It is either OnlyThese(ids)
// or AllExcept(ids); the second form lets a caller select every row matching a
// filter without enumerating them.
//
// The zero value is an empty OnlyThese selection.
type Selection struct {
	mode SelectionMode
	ids  map[string]struct{}
}

// OnlyThese returns a selection of exactly the given ids.
func OnlyThese(ids ...string) Selection {
	return Selection{mode: ModeOnly, ids: idSet(ids)}
}

// AllExcept returns a selection of every matching row except the given ids.
func AllExcept(ids ...string) Selection {
	return Selection{mode: ModeAllExcept, ids: idSet(ids)}
}

// Mode reports the variant of s.
func (s Selection) Mode() SelectionMode {
	if s.mode == "" {
		return ModeOnly
	}
	return s.mode
}

// IsAllExcept reports whether s is an AllExcept selection.
func (s Selection) IsAllExcept() bool {
	return s.mode == ModeAllExcept
}

// IDs returns the listed ids in ascending order. For OnlyThese these are the
// selected rows, for AllExcept the excluded ones.
func (s Selection) IDs() []string {
	return slices.Sorted(maps.Keys(s.ids))
}

// Contains reports whether id is part of the effective selection.
func (s Selection) Contains(id string) bool {
	_, listed := s.ids[id]
	if s.mode == ModeAllExcept {
		return !listed
	}
	return listed
}

// IsEmpty reports whether s selects nothing. An AllExcept selection is never
// considered empty because its extent depends on the matching total.
func (s Selection) IsEmpty() bool {
	return s.mode != ModeAllExcept && len(s.ids) == 0
}

// Count returns the number of selected rows given the total matching the filter.
func (s Selection) Count(total int64) int64 {
	if s.mode == ModeAllExcept {
		n := total - int64(len(s.ids))
		if n < 0 {
			return 0
		}
		return n
	}
	return int64(len(s.ids))
}

// Equal reports whether s and o select the same rows.
func (s Selection) Equal(o Selection) bool {
	if s.Mode() != o.Mode() || len(s.ids) != len(o.ids) {
		return false
	}
	for id := range s.ids {
		if _, ok := o.ids[id]; !ok {
			return false
		}
	}
	return true
}

func (s Selection) String() string {
	return fmt.Sprintf("%s%v", s.Mode(), s.IDs())
}

type selectionJSON struct {
	Mode SelectionMode `json:"mode"`
	IDs  []string      `json:"ids"`
}

// MarshalJSON encodes s as {"mode": "...", "ids": [...]}.
func (s Selection) MarshalJSON() ([]byte, error) {
	ids := s.IDs()
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(selectionJSON{Mode: s.Mode(), IDs: ids})
}

// UnmarshalJSON decodes the form written by MarshalJSON. A missing mode means ModeOnly.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var raw selectionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Mode {
	case "", ModeOnly:
		*s = OnlyThese(raw.IDs...)
	case ModeAllExcept:
		*s = AllExcept(raw.IDs...)
	default:
		return fmt.Errorf("unknown selection mode %q", raw.Mode)
	}
	return nil
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// CheckState is the tri-state value of a header checkbox.
type CheckState int

const (
	Unchecked CheckState = iota
	Checked
	Indeterminate
)

func (c CheckState) String() string {
	switch c {
	case Checked:
		return "checked"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unchecked"
	}
}

// Tracker holds the selection of one list view across pages. It knows the ids
// of the currently loaded page and the number of rows matching the filter.
// A Tracker is not safe for concurrent use; it belongs to one event loop.
type Tracker struct {
	sel   Selection
	page  []string
	total int64
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{sel: OnlyThese()}
}

// SetPage records the ids of the loaded page.
func (t *Tracker) SetPage(ids []string) {
	t.page = slices.Clone(ids)
}

// SetTotal records the number of rows matching the current filter.
func (t *Tracker) SetTotal(total int64) {
	t.total = total
}

// PageIDs returns the ids of the loaded page.
func (t *Tracker) PageIDs() []string {
	return slices.Clone(t.page)
}

// Toggle flips id in the effective selection. Ids outside the loaded page are
// accepted so choices made on earlier pages survive paging.
func (t *Tracker) Toggle(id string) {
	t.ensure()
	if _, ok := t.sel.ids[id]; ok {
		delete(t.sel.ids, id)
	} else {
		t.sel.ids[id] = struct{}{}
	}
}

// ToggleAll selects every loaded id when the selection is not inverted and
// some loaded id is unselected. Otherwise it clears the whole selection,
// including rows picked on other pages and an inverted "all matching" state.
func (t *Tracker) ToggleAll() {
	if t.sel.mode == ModeAllExcept || len(t.page) == 0 || t.IsAllSelected() {
		t.ClearAll()
		return
	}
	t.ensure()
	for _, id := range t.page {
		t.sel.ids[id] = struct{}{}
	}
}

// SelectAllMatching selects every row matching the current filter.
func (t *Tracker) SelectAllMatching() {
	t.sel = AllExcept()
}

// ClearAll resets the tracker to an empty selection.
func (t *Tracker) ClearAll() {
	t.sel = OnlyThese()
}

// IsSelected reports whether id is selected.
func (t *Tracker) IsSelected(id string) bool {
	return t.sel.Contains(id)
}

// SelectedCount returns the number of selected rows.
func (t *Tracker) SelectedCount() int64 {
	return t.sel.Count(t.total)
}

// IsAllSelected reports whether the loaded page is non-empty and fully selected.
func (t *Tracker) IsAllSelected() bool {
	if len(t.page) == 0 {
		return false
	}
	for _, id := range t.page {
		if !t.sel.Contains(id) {
			return false
		}
	}
	return true
}

// IsPartialSelected reports whether something is selected but not the whole page.
func (t *Tracker) IsPartialSelected() bool {
	return t.SelectedCount() > 0 && !t.IsAllSelected()
}

// HeaderState returns the state of the select-all checkbox.
func (t *Tracker) HeaderState() CheckState {
	switch {
	case t.IsAllSelected():
		return Checked
	case t.IsPartialSelected():
		return Indeterminate
	default:
		return Unchecked
	}
}

// Selection returns a copy of the current selection for submission.
func (t *Tracker) Selection() Selection {
	if t.sel.mode == ModeAllExcept {
		return AllExcept(t.sel.IDs()...)
	}
	return OnlyThese(t.sel.IDs()...)
}

// Restore replaces the current selection, e.g. after a failed bulk action
// was rolled back by the caller.
func (t *Tracker) Restore(s Selection) {
	if s.mode == ModeAllExcept {
		t.sel = AllExcept(s.IDs()...)
		return
	}
	t.sel = OnlyThese(s.IDs()...)
}

// set makes id selected or unselected regardless of the variant.
func (t *Tracker) set(id string, selected bool) {
	// In AllExcept the listed ids are exclusions, so membership is inverted.
	listed := selected
	if t.sel.mode == ModeAllExcept {
		listed = !selected
	}
	if listed {
		t.sel.ids[id] = struct{}{}
	} else {
		delete(t.sel.ids, id)
	}
}

func (t *Tracker) ensure() {
	if t.sel.ids == nil {
		t.sel.ids = make(map[string]struct{})
	}
	if t.sel.mode == "" {
		t.sel.mode = ModeOnly
	}
}
