package extract

import (
	"context"
	"errors"
	"fmt"

	"followtrack-backend/lib/browser"
)

// Kind is the closed set of extraction failure classes. The controller
// keys its retry decisions off it.
type Kind int

const (
	// KindResourceExhausted: the runtime could not allocate a session.
	KindResourceExhausted Kind = iota
	// KindBlockedOrAuthWall: navigation landed on a sign-in/anti-bot
	// wall instead of the target. A fresh session may get through.
	KindBlockedOrAuthWall
	// KindSelectorNotFound: no strategy located its element (markup
	// drift or a missing element).
	KindSelectorNotFound
	// KindParseError: an element was located but its text does not
	// parse as a count. Retrying cannot fix a broken data contract.
	KindParseError
	// KindTimeout: an attempt or the run deadline expired.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindResourceExhausted:
		return "resource_exhausted"
	case KindBlockedOrAuthWall:
		return "blocked_or_auth_wall"
	case KindSelectorNotFound:
		return "selector_not_found"
	case KindParseError:
		return "parse_error"
	case KindTimeout:
		return "timeout"
	}
	return "unknown"
}

// Retryable reports whether another attempt with a fresh session could
// change the outcome.
func (k Kind) Retryable() bool {
	return k != KindParseError
}

// FailureError is an extraction failure carried as data.
type FailureError struct {
	Kind    Kind
	Message string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func Failf(kind Kind, format string, args ...any) *FailureError {
	return &FailureError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Classify maps an arbitrary attempt error onto the taxonomy. Unknown
// transport failures count as detection: they are exactly what a
// tarpitting anti-bot layer produces, and a fresh session is the only
// sensible response either way.
func Classify(err error) *FailureError {
	var fe *FailureError
	if errors.As(err, &fe) {
		return fe
	}
	if errors.Is(err, browser.ErrResourceExhausted) {
		return &FailureError{Kind: KindResourceExhausted, Message: err.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &FailureError{Kind: KindTimeout, Message: err.Error()}
	}
	return &FailureError{Kind: KindBlockedOrAuthWall, Message: err.Error()}
}
