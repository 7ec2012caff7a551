package extract

import (
	"context"
	"strings"

	"followtrack-backend/lib/browser"
	"followtrack-backend/lib/countparse"
)

// Extractor reads one metric from one source through a session. A
// platform is added by adding a variant, never by branching in the
// controller.
type Extractor interface {
	Source() string
	Extract(ctx context.Context, s *browser.Session) (int64, error)
}

// statuses anti-automation layers answer with when they dislike you.
// 999 is LinkedIn's.
var blockedStatuses = map[int]bool{
	401: true,
	403: true,
	407: true,
	429: true,
	451: true,
	999: true,
}

type PageExtractorOptions struct {
	Source  string
	URL     string
	Headers map[string]string
	// Strategies are tried in order within one attempt; the first one
	// that locates an element wins (its parse failure is terminal).
	Strategies []Strategy
	// WallURLPatterns flag a redirect to an auth wall by substring of
	// the final url.
	WallURLPatterns []string
	// WallMarkers flag an auth wall by page content.
	WallMarkers []browser.Locator
}

// PageExtractor is the shared implementation behind every platform
// variant: navigate a url, detect walls, run the strategy cascade.
type PageExtractor struct {
	opts PageExtractorOptions
}

func NewPageExtractor(opts PageExtractorOptions) *PageExtractor {
	return &PageExtractor{opts: opts}
}

func (e *PageExtractor) Source() string {
	return e.opts.Source
}

func (e *PageExtractor) Extract(ctx context.Context, s *browser.Session) (int64, error) {
	nav, err := s.Navigate(ctx, e.opts.URL, e.opts.Headers)
	if err != nil {
		return 0, Classify(err)
	}

	if blockedStatuses[nav.StatusCode] {
		return 0, Failf(KindBlockedOrAuthWall, "status %d from %s", nav.StatusCode, e.opts.URL)
	}
	for _, pattern := range e.opts.WallURLPatterns {
		if strings.Contains(nav.FinalURL, pattern) {
			return 0, Failf(KindBlockedOrAuthWall, "redirected to %s", nav.FinalURL)
		}
	}
	for _, marker := range e.opts.WallMarkers {
		_, found, err := s.Locate(marker)
		if err == nil && found {
			return 0, Failf(KindBlockedOrAuthWall, "wall marker %q present", marker.Query)
		}
	}

	for _, strategy := range e.opts.Strategies {
		el, found, err := s.Locate(strategy.Locator)
		if err != nil || !found {
			// fall through to the next strategy, same attempt
			continue
		}

		parse := strategy.Parse
		if parse == nil {
			parse = countparse.Count
		}
		value, err := parse(el.Text())
		if err != nil {
			return 0, Failf(KindParseError, "strategy %q: %s", strategy.Name, err)
		}
		if value < 0 {
			return 0, Failf(KindParseError, "strategy %q: negative count %d", strategy.Name, value)
		}
		return value, nil
	}

	return 0, Failf(KindSelectorNotFound, "all %d strategies exhausted on %s", len(e.opts.Strategies), e.opts.URL)
}
