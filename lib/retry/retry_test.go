package retry

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDelayGrowsAndCaps(t *testing.T) {
	cfg := Config{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2,
		Jitter:       0,
	}

	require.Equal(t, 100*time.Millisecond, cfg.Delay(1, nil))
	require.Equal(t, 200*time.Millisecond, cfg.Delay(2, nil))
	require.Equal(t, 400*time.Millisecond, cfg.Delay(3, nil))
	require.Equal(t, time.Second, cfg.Delay(10, nil))
}

func TestDelayJitterBoundsAndReproducibility(t *testing.T) {
	cfg := Config{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2,
		Jitter:       0.25,
	}

	rng := rand.New(rand.NewSource(42))
	for attempt := 1; attempt <= 4; attempt++ {
		base := cfg.Delay(attempt, nil)
		d := cfg.Delay(attempt, rng)
		require.GreaterOrEqual(t, d, time.Duration(float64(base)*0.75))
		require.LessOrEqual(t, d, time.Duration(float64(base)*1.25))
	}

	a := cfg.Delay(2, rand.New(rand.NewSource(7)))
	b := cfg.Delay(2, rand.New(rand.NewSource(7)))
	require.Equal(t, a, b)
}

func TestDoStopsOnTerminalError(t *testing.T) {
	terminal := errors.New("terminal")
	calls := 0

	err := Do(
		context.Background(), 5,
		Config{InitialDelay: time.Millisecond}, nil,
		func(err error) bool { return !errors.Is(err, terminal) },
		func(ctx context.Context) error {
			calls++
			return terminal
		},
	)
	require.ErrorIs(t, err, terminal)
	require.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(
		context.Background(), 3,
		Config{InitialDelay: time.Millisecond, Jitter: 0}, nil,
		nil,
		func(ctx context.Context) error {
			calls++
			return errors.New("flaky")
		},
	)
	require.Error(t, err)
	require.Equal(t, 3, calls)
}

func TestDoSucceedsAfterRetry(t *testing.T) {
	calls := 0
	err := Do(
		context.Background(), 3,
		Config{InitialDelay: time.Millisecond, Jitter: 0}, nil,
		nil,
		func(ctx context.Context) error {
			calls++
			if calls < 2 {
				return errors.New("flaky")
			}
			return nil
		},
	)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}
