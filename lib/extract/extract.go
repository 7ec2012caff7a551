// Package extract holds the resilience core: platform-agnostic
// extraction jobs, the strategy cascade, and the retry/fallback
// controller that turns a detection-prone single-shot read into a
// bounded-attempt operation with a well-defined terminal outcome.
package extract

import (
	"time"

	"followtrack-backend/lib/browser"
)

// Strategy is one concrete way to read a metric from a page: a locator
// plus a parser from displayed text to a count. Parse defaults to
// countparse.Count.
type Strategy struct {
	Name    string
	Locator browser.Locator
	Parse   func(string) (int64, error)
}

// Job binds an extractor to its retry policy. Immutable once
// constructed; the orchestrator owns it for the duration of a run.
type Job struct {
	Extractor      Extractor
	Profile        browser.Profile
	MaxAttempts    int
	AttemptTimeout time.Duration
}

// Result is produced exactly once per job per run.
type Result struct {
	Source     string
	Value      int64
	CapturedAt time.Time
	Attempts   int
	// Failure is nil iff the extraction succeeded.
	Failure *FailureError
}

func (r Result) Succeeded() bool {
	return r.Failure == nil
}

// Batch is the ordered set of all job outcomes for one run. Order
// follows the configured job order, never completion order.
type Batch struct {
	RunID     string
	StartedAt time.Time
	Results   []Result
}
