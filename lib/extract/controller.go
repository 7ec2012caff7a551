package extract

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"followtrack-backend/lib/browser"
	"followtrack-backend/lib/retry"
	"followtrack-backend/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("followtrack.lib.extract")

// State of a job inside the controller.
type State int

const (
	StatePending State = iota
	StateAttempting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAttempting:
		return "attempting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

const (
	defaultMaxAttempts    = 3
	defaultAttemptTimeout = time.Second * 90
)

// Controller drives one job through
// Pending -> Attempting -> {Succeeded, Attempting(next), Failed}.
// Every attempt runs on a fresh session that is released on every exit
// path, so a detection event cannot poison the next attempt.
type Controller struct {
	sessions *browser.Provider
	backoff  retry.Config
}

func NewController(sessions *browser.Provider, backoff retry.Config) *Controller {
	return &Controller{sessions: sessions, backoff: backoff}
}

// Run executes the job to a terminal outcome. Attempt-level errors are
// fully contained here; the caller only ever sees a Result. rng drives
// backoff jitter and may be nil.
func (c *Controller) Run(ctx context.Context, job Job, rng *rand.Rand) Result {
	ctx, span := tracer.Start(ctx, "controller:Run")
	defer span.End()
	span.SetAttributes(attribute.String("source", job.Extractor.Source()))

	maxAttempts := job.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	state := StatePending
	result := Result{Source: job.Extractor.Source()}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			// run deadline passed: the aborted attempt is the outcome
			result.Attempts = attempt
			result.Failure = Classify(ctx.Err())
			break
		}

		state = StateAttempting
		result.Attempts = attempt
		slog.InfoContext(
			ctx, "attempt start",
			"source", result.Source,
			"state", state,
			"attempt", attempt,
			"max_attempts", maxAttempts,
		)

		value, err := c.attempt(ctx, job)
		if err == nil {
			state = StateSucceeded
			result.Value = value
			result.CapturedAt = time.Now().UTC()
			result.Failure = nil
			slog.InfoContext(
				ctx, "attempt outcome",
				"source", result.Source,
				"state", state,
				"attempt", attempt,
				"value", value,
			)
			span.SetAttributes(attribute.Int("attempts", attempt))
			return result
		}

		failure := Classify(err)
		result.Failure = failure
		slog.WarnContext(
			ctx, "attempt outcome",
			"source", result.Source,
			"state", state,
			"attempt", attempt,
			"kind", failure.Kind.String(),
			"err", failure.Message,
		)

		if !failure.Kind.Retryable() {
			break
		}
		if attempt == maxAttempts {
			break
		}

		// backoff before the next attempt to decorrelate detection
		err = retry.Sleep(ctx, c.backoff.Delay(attempt, rng))
		if err != nil {
			result.Failure = Classify(err)
			break
		}
	}

	state = StateFailed
	span.RecordError(result.Failure)
	span.SetStatus(codes.Error, result.Failure.Kind.String())
	span.SetAttributes(attribute.Int("attempts", result.Attempts))
	slog.WarnContext(
		ctx, "job failed",
		"source", result.Source,
		"state", state,
		"attempts", result.Attempts,
		"kind", result.Failure.Kind.String(),
	)
	return result
}

// attempt acquires a session, extracts under the per-attempt deadline,
// and releases the session no matter how the attempt ends.
func (c *Controller) attempt(ctx context.Context, job Job) (int64, error) {
	timeout := job.AttemptTimeout
	if timeout <= 0 {
		timeout = defaultAttemptTimeout
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	session, err := c.sessions.Acquire(actx, job.Profile)
	if err != nil {
		return 0, err
	}
	defer c.sessions.Release(session)

	return job.Extractor.Extract(actx, session)
}
