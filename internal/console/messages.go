package console

import (
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/listview"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/mutation"
)

// targeted is implemented by messages addressed to one list screen.
type targeted interface {
	target() string
}

// pageMsg is the result of a list fetch. Key is the committed query key the
// fetch was issued for.
type pageMsg[T any] struct {
	entity string
	key    string
	page   listview.Page[T]
	err    error
}

func (m pageMsg[T]) target() string { return m.entity }

// commitMsg fires when the debounce delay of a pending query update elapses.
type commitMsg struct {
	entity string
	token  listview.Token
}

func (m commitMsg) target() string { return m.entity }

// deletedMsg ends a bulk delete.
type deletedMsg struct {
	entity string
	err    error
}

func (m deletedMsg) target() string { return m.entity }

// invalidatedMsg reports cached reads dropped under prefix.
type invalidatedMsg struct {
	prefix string
}

// loginMsg ends a login attempt.
type loginMsg struct {
	err error
}

// sessionExpiredMsg asks for a new login before entity can be shown.
type sessionExpiredMsg struct {
	entity string
}

// forbiddenMsg reports that the user may not read entity.
type forbiddenMsg struct {
	entity string
	err    error
}

// flashMsg shows a notification.
type flashMsg struct {
	note mutation.Notification
}

// flashExpiredMsg hides the notification with the same sequence number.
type flashExpiredMsg struct {
	seq int
}
