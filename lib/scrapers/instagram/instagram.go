// Package instagram defines the Instagram extractors: the public
// profile page plus a third-party stats API used as an independent
// fallback source when the page is walled off.
package instagram

import (
	"fmt"

	"followtrack-backend/lib/browser"
	"followtrack-backend/lib/extract"
)

// AccountExtractor reads the follower count from the public profile
// page. The og:description meta renders server-side as
// "12.3K Followers, 45 Following, 678 Posts", so the first numeric
// token is the follower count.
func AccountExtractor(username string) *extract.PageExtractor {
	return extract.NewPageExtractor(extract.PageExtractorOptions{
		Source: "instagram:account",
		URL:    fmt.Sprintf("https://www.instagram.com/%s/", username),
		Strategies: []extract.Strategy{
			{
				Name:    "og-description",
				Locator: browser.Locator{Kind: browser.LocatorCSS, Query: `meta[property="og:description"]`},
			},
			{
				Name:    "shared-data",
				Locator: browser.Locator{Kind: browser.LocatorRegex, Query: `"edge_followed_by":\{"count":(\d+)\}`},
			},
		},
		WallURLPatterns: []string{"/accounts/login"},
		WallMarkers: []browser.Locator{
			{Kind: browser.LocatorRegex, Query: `Log in to Instagram`},
		},
	})
}

// APIExtractor reads the follower count from a stats endpoint keyed by
// username.
func APIExtractor(endpoint, username string) *extract.PageExtractor {
	return extract.NewPageExtractor(extract.PageExtractorOptions{
		Source: "instagram:api",
		URL:    fmt.Sprintf("%s?username=%s", endpoint, username),
		Strategies: []extract.Strategy{
			{
				Name:    "user-followers",
				Locator: browser.Locator{Kind: browser.LocatorJSON, Query: "user_followers"},
			},
		},
	})
}
