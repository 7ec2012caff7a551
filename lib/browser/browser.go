// Package browser defines the boundary to the page-automation runtime
// and manages isolated, stealth-configured sessions on top of it.
// Any engine that can launch an isolated context, navigate, and locate
// elements satisfies Runtime; the core never depends on a concrete one.
package browser

import (
	"context"
	"errors"
)

// Profile selects a stealth configuration tier.
type Profile string

const (
	// ProfileStandard rotates fingerprints with mild pacing.
	ProfileStandard Profile = "standard"
	// ProfileHardened rotates a wider fingerprint pool and paces
	// navigation with longer randomized delays.
	ProfileHardened Profile = "hardened"
)

// ErrResourceExhausted reports that the runtime could not allocate a
// session. Callers treat it as retryable.
var ErrResourceExhausted = errors.New("automation runtime could not allocate a session")

// LocatorKind selects how a locator query is evaluated against a page.
type LocatorKind int

const (
	// LocatorCSS is a css selector over the rendered document.
	LocatorCSS LocatorKind = iota
	// LocatorJSON is a dot-separated path into a JSON response body
	// (numeric segments index arrays).
	LocatorJSON
	// LocatorRegex is a pattern over the raw page content; the first
	// capture group (or the whole match) is the element text.
	LocatorRegex
)

type Locator struct {
	Kind  LocatorKind
	Query string
}

// Element is a located piece of page content.
type Element interface {
	Text() string
}

// NavResult describes where a navigation actually ended up.
type NavResult struct {
	FinalURL   string
	StatusCode int
}

// Handle is one isolated page context owned by a single session.
type Handle interface {
	Navigate(ctx context.Context, url string, headers map[string]string) (NavResult, error)
	Locate(loc Locator) (Element, bool, error)
	Close() error
}

// Runtime launches isolated page contexts. Launching must never share
// cookie, cache, or storage state between handles.
type Runtime interface {
	Launch(ctx context.Context, fp Fingerprint) (Handle, error)
}
