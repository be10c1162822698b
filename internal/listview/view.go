package listview

import "context"

// FetchFunc loads one page for a committed query.
type FetchFunc[T any] func(ctx context.Context, q Query) (Page[T], error)

// View binds a controller, a tracker and a composer to the pages fetched for a
// single list. It correlates responses with the committed query so an older
// response can never replace a newer one.
type View[T any] struct {
	Ctrl     *Controller
	Tracker  *Tracker
	Composer Composer[T]

	page      Page[T]
	pageKey   string
	filterRef Query
	err       error
	busy      bool
}

// NewView returns a view starting from initial.
func NewView[T any](schema Schema, initial Query, composer Composer[T]) *View[T] {
	ctrl := NewController(schema, initial)
	return &View[T]{
		Ctrl:      ctrl,
		Tracker:   NewTracker(),
		Composer:  composer,
		filterRef: ctrl.Committed(),
	}
}

// Key is the cache key of the committed query.
func (v *View[T]) Key() string {
	return v.Ctrl.Committed().Key()
}

// NeedsFetch reports whether the displayed page does not belong to the
// committed query.
func (v *View[T]) NeedsFetch() bool {
	return v.pageKey != v.Key()
}

// Invalidate marks the displayed page as stale so the next check refetches it.
// The rows stay visible until the new page arrives.
func (v *View[T]) Invalidate() {
	v.pageKey = ""
}

// Commit commits tok and reports whether the committed query changed.
func (v *View[T]) Commit(tok Token) bool {
	if !v.Ctrl.Commit(tok) {
		return false
	}
	v.afterCommit()
	return true
}

// Flush commits the pending query immediately.
func (v *View[T]) Flush() {
	v.Ctrl.Flush()
	v.afterCommit()
}

// afterCommit drops the selection when the committed rows are a different set.
func (v *View[T]) afterCommit() {
	committed := v.Ctrl.Committed()
	if !committed.SameFilter(v.filterRef) {
		v.Tracker.ClearAll()
	}
	v.filterRef = committed
}

// Accept installs a fetched page if key still matches the committed query and
// reports whether it did. When the server returned a different page number
// because the requested one no longer exists, the view moves to that page.
func (v *View[T]) Accept(key string, p Page[T]) bool {
	if key != v.Key() {
		return false
	}
	if p.Page >= 1 && p.Page != v.Ctrl.Committed().Page {
		v.Ctrl.AdoptPage(p.Page)
	}
	v.page = p
	v.pageKey = v.Key()
	v.err = nil
	v.Tracker.SetPage(v.Composer.IDs(p.Items))
	v.Tracker.SetTotal(p.Total)
	return true
}

// Fail records a fetch error for key. Errors for stale keys are dropped.
func (v *View[T]) Fail(key string, err error) bool {
	if key != v.Key() {
		return false
	}
	v.err = err
	v.pageKey = key
	return true
}

// Err returns the error of the last fetch of the committed query.
func (v *View[T]) Err() error { return v.err }

// Page returns the displayed page.
func (v *View[T]) Page() Page[T] { return v.page }

// SetBusy disables or enables user input, e.g. while a mutation is in flight.
func (v *View[T]) SetBusy(busy bool) { v.busy = busy }

// Busy reports whether user input is disabled.
func (v *View[T]) Busy() bool { return v.busy }

// Table composes the current render model.
func (v *View[T]) Table() Table {
	return v.Composer.Compose(v.Ctrl, v.Tracker, v.page, v.busy)
}

// Dispatch routes a user action into the view.
func (v *View[T]) Dispatch(a Action) Dispatched {
	total := v.page.TotalPages
	if total < 1 {
		total = 1
	}
	return v.Composer.Dispatch(v.Ctrl, v.Tracker, total, a, v.busy)
}

// Load fetches the committed query synchronously and installs the result.
func (v *View[T]) Load(ctx context.Context, fetch FetchFunc[T]) error {
	key := v.Key()
	p, err := fetch(ctx, v.Ctrl.Committed())
	if err != nil {
		v.Fail(key, err)
		return err
	}
	v.Accept(key, p)
	return nil
}
