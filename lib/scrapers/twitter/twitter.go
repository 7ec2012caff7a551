// Package twitter defines the extractor over the X/Twitter v2 API.
package twitter

import (
	"fmt"

	"followtrack-backend/lib/browser"
	"followtrack-backend/lib/extract"
)

// AccountExtractor reads public follower metrics for a username. The
// v2 API wants a bearer token; a missing or expired one shows up as a
// blocked attempt (401), which is accurate enough.
func AccountExtractor(username, bearerToken string) *extract.PageExtractor {
	return extract.NewPageExtractor(extract.PageExtractorOptions{
		Source: fmt.Sprintf("twitter:%s", username),
		URL:    fmt.Sprintf("https://api.twitter.com/2/users/by/username/%s?user.fields=public_metrics", username),
		Headers: map[string]string{
			"authorization": "Bearer " + bearerToken,
		},
		Strategies: []extract.Strategy{
			{
				Name:    "public-metrics",
				Locator: browser.Locator{Kind: browser.LocatorJSON, Query: "data.public_metrics.followers_count"},
			},
		},
	})
}
