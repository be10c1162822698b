package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Level is the kind of a notification.
type Level int

const (
	Success Level = iota
	Failure
)

func (l Level) String() string {
	if l == Failure {
		return "failure"
	}
	return "success"
}

// Notification is a user-visible message about the outcome of a mutation.
type Notification struct {
	Level   Level
	Title   string
	Message string
	// Code is the machine-readable error code of a failure, if the error had one.
	Code string
}

// Notifier shows notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Invalidator drops cached reads by key prefix.
type Invalidator interface {
	Invalidate(prefixes ...string) int
}

// Mutation describes a remote write and its effect on cached reads.
type Mutation struct {
	// Name labels the notification, e.g. "Delete employees".
	Name string
	// Invalidate lists the cache key prefixes affected by the write.
	Invalidate []string
	// SuccessMessage is shown on success. Empty means "Done".
	SuccessMessage string
	// OnSuccess runs after invalidation, e.g. to clear a selection or close a dialog.
	OnSuccess func()
}

// Bridge runs mutations. Every run ends in exactly one notification: success
// with cache invalidation, or failure with the cache untouched.
type Bridge struct {
	cache    Invalidator
	notifier Notifier
	logger   *slog.Logger
	pending  atomic.Int32
}

// NewBridge creates a Bridge. It panics if cache or notifier is nil.
func NewBridge(cache Invalidator, notifier Notifier, logger *slog.Logger) *Bridge {
	if cache == nil {
		panic("mutation: cache invalidator must not be nil")
	}
	if notifier == nil {
		panic("mutation: notifier must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{cache: cache, notifier: notifier, logger: logger}
}

// IsPending reports whether a mutation is in flight. Callers use it to disable
// the control that triggered the mutation.
func (b *Bridge) IsPending() bool {
	return b.pending.Load() > 0
}

// Run executes call. A panic in call is reported as a failure. Panics raised
// after call succeeded, e.g. in OnSuccess, are not turned into a second
// notification and propagate to the caller.
func (b *Bridge) Run(ctx context.Context, m Mutation, call func(context.Context) error) error {
	b.pending.Add(1)
	defer b.pending.Add(-1)

	if err := invoke(ctx, m.Name, call); err != nil {
		b.fail(ctx, m, err)
		return err
	}

	removed := b.cache.Invalidate(m.Invalidate...)
	b.logger.DebugContext(ctx, "mutation succeeded", "mutation", m.Name, "invalidated", removed)

	msg := m.SuccessMessage
	if msg == "" {
		msg = "Done"
	}
	b.notifier.Notify(Notification{Level: Success, Title: m.Name, Message: msg})
	if m.OnSuccess != nil {
		m.OnSuccess()
	}
	return nil
}

// invoke runs call and converts a panic into an error.
func invoke(ctx context.Context, name string, call func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", name, r)
		}
	}()
	return call(ctx)
}

// coded is implemented by errors that carry a machine-readable code.
type coded interface {
	ErrorCode() string
}

func (b *Bridge) fail(ctx context.Context, m Mutation, err error) {
	code := ""
	var ce coded
	if errors.As(err, &ce) {
		code = ce.ErrorCode()
	}

	level := slog.LevelWarn
	if code == "" || code == "INTERNAL_SERVER_ERROR" {
		level = slog.LevelError
	}
	b.logger.Log(ctx, level, "mutation failed", "mutation", m.Name, "code", code, "error", err)

	b.notifier.Notify(Notification{Level: Failure, Title: m.Name, Message: err.Error(), Code: code})
}
