package tracker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"followtrack-backend/lib/browser"
	"followtrack-backend/lib/extract"
	"followtrack-backend/lib/retry"
	"followtrack-backend/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

type nopHandle struct{}

func (nopHandle) Navigate(ctx context.Context, url string, headers map[string]string) (browser.NavResult, error) {
	return browser.NavResult{FinalURL: url, StatusCode: 200}, nil
}

func (nopHandle) Locate(loc browser.Locator) (browser.Element, bool, error) {
	return nil, false, nil
}

func (nopHandle) Close() error { return nil }

type nopRuntime struct{}

func (nopRuntime) Launch(ctx context.Context, fp browser.Fingerprint) (browser.Handle, error) {
	return nopHandle{}, nil
}

type stubExtractor struct {
	source  string
	extract func(ctx context.Context) (int64, error)
}

func (s stubExtractor) Source() string { return s.source }

func (s stubExtractor) Extract(ctx context.Context, session *browser.Session) (int64, error) {
	return s.extract(ctx)
}

func newTestService(t *testing.T, jobs []extract.Job, options Options) *Service {
	cleanup := telemetry.SetupForTesting(t, "test:tracker")
	t.Cleanup(cleanup)

	provider := browser.NewProvider(nopRuntime{}, browser.ProviderOptions{Seed: 7, DisablePacing: true})
	controller := extract.NewController(provider, retry.Config{InitialDelay: time.Millisecond, Jitter: 0})
	return NewService(controller, jobs, options)
}

func countingJob(source string, delay time.Duration, value int64, inflight, peak *atomic.Int32) extract.Job {
	return extract.Job{
		Extractor: stubExtractor{
			source: source,
			extract: func(ctx context.Context) (int64, error) {
				n := inflight.Add(1)
				defer inflight.Add(-1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				select {
				case <-time.After(delay):
					return value, nil
				case <-ctx.Done():
					return 0, ctx.Err()
				}
			},
		},
		Profile:        browser.ProfileStandard,
		MaxAttempts:    1,
		AttemptTimeout: time.Second * 5,
	}
}

func TestBatchOrderMatchesConfiguredOrder(t *testing.T) {
	var inflight, peak atomic.Int32
	// the slowest job comes first so completion order inverts
	jobs := []extract.Job{
		countingJob("a", 80*time.Millisecond, 1, &inflight, &peak),
		countingJob("b", 20*time.Millisecond, 2, &inflight, &peak),
		countingJob("c", 0, 3, &inflight, &peak),
	}
	svc := newTestService(t, jobs, Options{Concurrency: 3})

	batch := svc.Run(context.Background())
	require.NotEmpty(t, batch.RunID)
	require.Len(t, batch.Results, 3)
	for i, source := range []string{"a", "b", "c"} {
		require.Equal(t, source, batch.Results[i].Source)
		require.True(t, batch.Results[i].Succeeded())
		require.Equal(t, int64(i+1), batch.Results[i].Value)
	}
}

func TestConcurrencyCapHolds(t *testing.T) {
	var inflight, peak atomic.Int32
	jobs := make([]extract.Job, 6)
	for i := range jobs {
		jobs[i] = countingJob(string(rune('a'+i)), 30*time.Millisecond, int64(i), &inflight, &peak)
	}
	svc := newTestService(t, jobs, Options{Concurrency: 2})

	batch := svc.Run(context.Background())
	require.Len(t, batch.Results, 6)
	require.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunDeadlineRecordsTimeouts(t *testing.T) {
	var inflight, peak atomic.Int32
	jobs := []extract.Job{
		countingJob("fast", 0, 10, &inflight, &peak),
		countingJob("slow", time.Second, 20, &inflight, &peak),
		countingJob("queued", time.Second, 30, &inflight, &peak),
	}
	svc := newTestService(t, jobs, Options{Concurrency: 2, RunDeadline: 100 * time.Millisecond})

	start := time.Now()
	batch := svc.Run(context.Background())
	require.Less(t, time.Since(start), time.Second)

	require.True(t, batch.Results[0].Succeeded())
	for _, result := range batch.Results[1:] {
		require.False(t, result.Succeeded())
		require.Equal(t, extract.KindTimeout, result.Failure.Kind)
		require.GreaterOrEqual(t, result.Attempts, 1)
	}
}

func TestRepeatRunsProduceSameBatch(t *testing.T) {
	jobs := []extract.Job{
		{
			Extractor: stubExtractor{
				source:  "stable",
				extract: func(ctx context.Context) (int64, error) { return 42, nil },
			},
			Profile:     browser.ProfileStandard,
			MaxAttempts: 1,
		},
		{
			Extractor: stubExtractor{
				source: "broken",
				extract: func(ctx context.Context) (int64, error) {
					return 0, extract.Failf(extract.KindParseError, "displayed text unparsable")
				},
			},
			Profile:     browser.ProfileStandard,
			MaxAttempts: 3,
		},
	}
	svc := newTestService(t, jobs, Options{Concurrency: 2, Seed: 99})

	first := svc.Run(context.Background())
	second := svc.Run(context.Background())

	diff := cmp.Diff(
		first, second,
		cmpopts.IgnoreFields(extract.Batch{}, "RunID", "StartedAt"),
		cmpopts.IgnoreFields(extract.Result{}, "CapturedAt"),
	)
	require.Empty(t, diff)
}
