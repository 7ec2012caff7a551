// Package linkedin defines the extractors for LinkedIn profile,
// company, and newsletter pages. These are the most aggressively
// walled sources; every extractor carries several fallback strategies
// and wall markers so a sign-in redirect is classified as detection,
// not as missing markup.
package linkedin

import (
	"fmt"
	"strings"

	"followtrack-backend/lib/browser"
	"followtrack-backend/lib/extract"
)

var wallURLPatterns = []string{
	"/authwall",
	"/login",
	"/signup",
	"/checkpoint",
	"/uas/",
}

var wallMarkers = []browser.Locator{
	{Kind: browser.LocatorRegex, Query: `Sign in to LinkedIn`},
	{Kind: browser.LocatorRegex, Query: `Join to view full profile`},
	{Kind: browser.LocatorRegex, Query: `Join now to see all activity`},
}

// ProfileExtractor reads the follower count of a public member
// profile.
func ProfileExtractor(profileURL string) *extract.PageExtractor {
	return extract.NewPageExtractor(extract.PageExtractorOptions{
		Source: "linkedin:profile",
		URL:    profileURL,
		Strategies: []extract.Strategy{
			{
				Name:    "top-card-subline",
				Locator: browser.Locator{Kind: browser.LocatorCSS, Query: ".top-card__subline-item"},
			},
			{
				Name:    "top-card-first-subline",
				Locator: browser.Locator{Kind: browser.LocatorCSS, Query: ".top-card-layout__first-subline"},
			},
			{
				Name:    "content-followers",
				Locator: browser.Locator{Kind: browser.LocatorRegex, Query: `(?i)(\d[\d.,\x{00a0} ]*[KMB]?)\s*followers`},
			},
		},
		WallURLPatterns: wallURLPatterns,
		WallMarkers:     wallMarkers,
	})
}

// CompanyExtractor reads the follower count of a company page. slug
// distinguishes the configured pages in the source identifier.
func CompanyExtractor(slug, pageURL string) *extract.PageExtractor {
	return extract.NewPageExtractor(extract.PageExtractorOptions{
		Source: fmt.Sprintf("linkedin:company:%s", strings.ToLower(slug)),
		URL:    pageURL,
		Strategies: []extract.Strategy{
			{
				Name:    "summary-info",
				Locator: browser.Locator{Kind: browser.LocatorCSS, Query: ".org-top-card-summary-info-list__info-item"},
			},
			{
				Name:    "top-card-first-subline",
				Locator: browser.Locator{Kind: browser.LocatorCSS, Query: ".top-card-layout__first-subline"},
			},
			{
				Name:    "content-followers",
				Locator: browser.Locator{Kind: browser.LocatorRegex, Query: `(?i)(\d[\d.,\x{00a0} ]*[KMB]?)\s*followers`},
			},
		},
		WallURLPatterns: wallURLPatterns,
		WallMarkers:     wallMarkers,
	})
}

// NewsletterExtractor reads the subscriber count from a newsletter
// article page (the count only renders on articles, not on the
// newsletter home).
func NewsletterExtractor(articleURL string) *extract.PageExtractor {
	return extract.NewPageExtractor(extract.PageExtractorOptions{
		Source: "linkedin:newsletter",
		URL:    articleURL,
		Strategies: []extract.Strategy{
			{
				Name:    "content-subscribers",
				Locator: browser.Locator{Kind: browser.LocatorRegex, Query: `(?i)(\d[\d.,\x{00a0} ]*[KMB]?)\s*subscribers`},
			},
			{
				Name:    "top-card-first-subline",
				Locator: browser.Locator{Kind: browser.LocatorCSS, Query: ".top-card-layout__first-subline"},
			},
		},
		WallURLPatterns: wallURLPatterns,
		WallMarkers:     wallMarkers,
	})
}
