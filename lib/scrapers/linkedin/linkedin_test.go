package linkedin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"followtrack-backend/lib/browser"
	"followtrack-backend/lib/browser/httprt"
	"followtrack-backend/lib/extract"
	"followtrack-backend/lib/retry"
	"followtrack-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func runJob(t *testing.T, ex extract.Extractor) extract.Result {
	cleanup := telemetry.SetupForTesting(t, "test:linkedin")
	t.Cleanup(cleanup)

	rt := httprt.New(httprt.Options{DisableBypass: true})
	provider := browser.NewProvider(rt, browser.ProviderOptions{Seed: 1, DisablePacing: true})
	ctrl := extract.NewController(provider, retry.Config{InitialDelay: time.Millisecond, Jitter: 0})

	return ctrl.Run(context.Background(), extract.Job{
		Extractor:      ex,
		Profile:        browser.ProfileHardened,
		MaxAttempts:    2,
		AttemptTimeout: time.Second * 5,
	}, nil)
}

func TestProfileExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<section class="top-card-layout">
				<h3 class="top-card__subline-item">2,512 followers</h3>
			</section>
		</body></html>`))
	}))
	t.Cleanup(srv.Close)

	result := runJob(t, ProfileExtractor(srv.URL))
	require.True(t, result.Succeeded())
	require.Equal(t, int64(2512), result.Value)
	require.Equal(t, 1, result.Attempts)
}

func TestCompanyRegexFallback(t *testing.T) {
	// no known selector markup, only loose page text
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Acme Corp has 1.2K followers on LinkedIn.</p></body></html>`))
	}))
	t.Cleanup(srv.Close)

	result := runJob(t, CompanyExtractor("acme", srv.URL))
	require.True(t, result.Succeeded())
	require.Equal(t, int64(1200), result.Value)
	require.Equal(t, 1, result.Attempts)
}

func TestAuthWallIsBlockedNotMissingSelector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<h1>Sign in to LinkedIn</h1>
			<p>2,512 followers</p>
		</body></html>`))
	}))
	t.Cleanup(srv.Close)

	result := runJob(t, NewsletterExtractor(srv.URL))
	require.False(t, result.Succeeded())
	require.Equal(t, extract.KindBlockedOrAuthWall, result.Failure.Kind)
	require.Equal(t, 2, result.Attempts)
}
