// Package retry implements capped exponential backoff with jitter.
// Jitter is drawn from a caller-provided source so runs are
// reproducible under a fixed seed.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

type Config struct {
	// InitialDelay is the delay before the first retry.
	// Default: 500ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier.
	// Default: 2.0
	Multiplier float64

	// Jitter is the fraction of the delay added or subtracted at
	// random, in [0, 1]. Default: 0.25
	Jitter float64
}

func (c Config) withDefaults() Config {
	if c.InitialDelay <= 0 {
		c.InitialDelay = 500 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.Jitter < 0 || c.Jitter > 1 {
		c.Jitter = 0.25
	}
	return c
}

// Delay returns the backoff delay after the given attempt (1-based).
// rng may be nil to disable jitter.
func (c Config) Delay(attempt int, rng *rand.Rand) time.Duration {
	c = c.withDefaults()
	if attempt < 1 {
		attempt = 1
	}

	delay := time.Duration(float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt-1)))
	if delay > c.MaxDelay || delay <= 0 {
		delay = c.MaxDelay
	}

	if rng != nil && c.Jitter > 0 {
		span := float64(delay) * c.Jitter
		delay += time.Duration(span * (rng.Float64()*2 - 1))
		if delay < 0 {
			delay = 0
		}
	}
	return delay
}

// Sleep waits for d or until the context is done, whichever comes
// first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs op up to maxAttempts times, backing off between attempts.
// retryIf decides whether a failure is worth another attempt; a nil
// retryIf retries every error. The last error is returned once
// attempts are exhausted.
func Do(
	ctx context.Context,
	maxAttempts int,
	cfg Config,
	rng *rand.Rand,
	retryIf func(error) bool,
	op func(context.Context) error,
) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if retryIf == nil {
		retryIf = func(err error) bool { return err != nil }
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !retryIf(lastErr) {
			return lastErr
		}
		if attempt == maxAttempts {
			break
		}
		if err := Sleep(ctx, cfg.Delay(attempt, rng)); err != nil {
			return lastErr
		}
	}
	return lastErr
}
