package pkg

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/domain"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// RequireText reports a validation error when v is blank or longer than max runes.
func RequireText(field, v string, max int) error {
	if v == "" {
		return domain.Invalid(field + " is required")
	}
	return OptionalText(field, v, max)
}

// OptionalText reports a validation error when v is longer than max runes.
func OptionalText(field, v string, max int) error {
	if utf8.RuneCountInString(v) > max {
		return domain.Invalid(fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}

// OptionalEmail reports a validation error when v is set and not a bare address.
func OptionalEmail(field, v string) error {
	if v == "" {
		return nil
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return domain.Invalid(field + " must be a valid email address")
	}
	return nil
}

// ParseDate parses an optional YYYY-MM-DD date. Blank yields nil.
func ParseDate(field, v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return nil, domain.Invalid(field + " must be a date in the form " + DateLayout)
	}
	return &t, nil
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
