// Package kit defines extractors over the Kit (ConvertKit) v4 growth
// stats API. Each reporting range is its own source so daily, weekly,
// and monthly figures flow through the batch independently.
package kit

import (
	"fmt"

	"followtrack-backend/lib/browser"
	"followtrack-backend/lib/extract"
)

const growthStatsEndpoint = "https://api.kit.com/v4/account/growth_stats"

// GrowthStatsExtractor reads the subscriber total for one range
// ("daily", "weekly", "monthly").
func GrowthStatsExtractor(apiKey, statsRange string) *extract.PageExtractor {
	return extract.NewPageExtractor(extract.PageExtractorOptions{
		Source: fmt.Sprintf("kit:%s", statsRange),
		URL:    fmt.Sprintf("%s?range=%s", growthStatsEndpoint, statsRange),
		Headers: map[string]string{
			"x-kit-api-key": apiKey,
		},
		Strategies: []extract.Strategy{
			{
				Name:    "stats-subscribers",
				Locator: browser.Locator{Kind: browser.LocatorJSON, Query: "stats.subscribers"},
			},
			{
				Name:    "stats-total-subscribers",
				Locator: browser.Locator{Kind: browser.LocatorJSON, Query: "stats.total_subscribers"},
			},
		},
	})
}
