package extract

import (
	"context"
	"testing"

	"followtrack-backend/lib/browser"
	"followtrack-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func sessionFor(t *testing.T, h *scriptedHandle) *browser.Session {
	rt := &scriptedRuntime{script: func(int) *scriptedHandle { return h }}
	provider := browser.NewProvider(rt, browser.ProviderOptions{Seed: 1, DisablePacing: true})
	s, err := provider.Acquire(context.Background(), browser.ProfileStandard)
	require.NoError(t, err)
	t.Cleanup(func() { provider.Release(s) })
	return s
}

func twoStrategyExtractor() *PageExtractor {
	return NewPageExtractor(PageExtractorOptions{
		Source: "linkedin:company:acme",
		URL:    "https://example.com/company/acme",
		Strategies: []Strategy{
			{Name: "subline", Locator: browser.Locator{Kind: browser.LocatorCSS, Query: ".subline"}},
			{Name: "content-regex", Locator: browser.Locator{Kind: browser.LocatorRegex, Query: `([\d,]+) followers`}},
		},
		WallURLPatterns: []string{"/authwall"},
		WallMarkers: []browser.Locator{
			{Kind: browser.LocatorRegex, Query: `Sign in to LinkedIn`},
		},
	})
}

func TestStrategyFallthroughWithinOneAttempt(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:extract")
	defer cleanup()

	// strategy 1 locates nothing, strategy 2 matches
	s := sessionFor(t, &scriptedHandle{located: map[string]string{
		`([\d,]+) followers`: "12,345",
	}})

	value, err := twoStrategyExtractor().Extract(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, int64(12345), value)
}

func TestFirstStrategyWins(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:extract")
	defer cleanup()

	s := sessionFor(t, &scriptedHandle{located: map[string]string{
		".subline":            "1.2K followers",
		`([\d,]+) followers`: "999",
	}})

	value, err := twoStrategyExtractor().Extract(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, int64(1200), value)
}

func TestAllStrategiesExhausted(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:extract")
	defer cleanup()

	s := sessionFor(t, &scriptedHandle{located: map[string]string{}})

	_, err := twoStrategyExtractor().Extract(context.Background(), s)
	failure := Classify(err)
	require.Equal(t, KindSelectorNotFound, failure.Kind)
}

func TestLocatedButUnparsableIsParseError(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:extract")
	defer cleanup()

	s := sessionFor(t, &scriptedHandle{located: map[string]string{
		".subline": "Join to view this profile",
	}})

	_, err := twoStrategyExtractor().Extract(context.Background(), s)
	failure := Classify(err)
	require.Equal(t, KindParseError, failure.Kind)
}

func TestAuthWallRedirectDetected(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:extract")
	defer cleanup()

	s := sessionFor(t, &scriptedHandle{
		finalURL: "https://example.com/authwall?return=/company/acme",
		located: map[string]string{
			".subline": "1.2K followers",
		},
	})

	_, err := twoStrategyExtractor().Extract(context.Background(), s)
	failure := Classify(err)
	require.Equal(t, KindBlockedOrAuthWall, failure.Kind)
}

func TestWallMarkerDetected(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:extract")
	defer cleanup()

	s := sessionFor(t, &scriptedHandle{located: map[string]string{
		`Sign in to LinkedIn`: "Sign in to LinkedIn",
	}})

	_, err := twoStrategyExtractor().Extract(context.Background(), s)
	failure := Classify(err)
	require.Equal(t, KindBlockedOrAuthWall, failure.Kind)
}

func TestBlockedStatusDetected(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:extract")
	defer cleanup()

	s := sessionFor(t, &scriptedHandle{status: 999})

	_, err := twoStrategyExtractor().Extract(context.Background(), s)
	failure := Classify(err)
	require.Equal(t, KindBlockedOrAuthWall, failure.Kind)
}
