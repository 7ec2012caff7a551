// Package youtube defines extractors over the YouTube Data API.
// Subscribers and total views come from the same statistics response
// but stay separate sources so each remains a single-metric job.
package youtube

import (
	"fmt"

	"followtrack-backend/lib/browser"
	"followtrack-backend/lib/extract"
)

const statsEndpoint = "https://www.googleapis.com/youtube/v3/channels"

func statsURL(apiKey, channelID string) string {
	return fmt.Sprintf("%s?part=statistics&id=%s&key=%s", statsEndpoint, channelID, apiKey)
}

func SubscribersExtractor(apiKey, channelID string) *extract.PageExtractor {
	return extract.NewPageExtractor(extract.PageExtractorOptions{
		Source: fmt.Sprintf("youtube:channel:%s:subscribers", channelID),
		URL:    statsURL(apiKey, channelID),
		Strategies: []extract.Strategy{
			{
				Name:    "statistics-subscribers",
				Locator: browser.Locator{Kind: browser.LocatorJSON, Query: "items.0.statistics.subscriberCount"},
			},
		},
	})
}

func ViewsExtractor(apiKey, channelID string) *extract.PageExtractor {
	return extract.NewPageExtractor(extract.PageExtractorOptions{
		Source: fmt.Sprintf("youtube:channel:%s:views", channelID),
		URL:    statsURL(apiKey, channelID),
		Strategies: []extract.Strategy{
			{
				Name:    "statistics-views",
				Locator: browser.Locator{Kind: browser.LocatorJSON, Query: "items.0.statistics.viewCount"},
			},
		},
	})
}
