package browser

import "time"

// Fingerprint is the identity a session presents to a page.
type Fingerprint struct {
	UserAgent string
	ViewportW int
	ViewportH int
	Locale    string
	Timezone  string
}

// tier bundles the fingerprint pool and pacing bounds of one profile.
type tier struct {
	fingerprints []Fingerprint
	navDelayMin  time.Duration
	navDelayMax  time.Duration
}

var viewports = [][2]int{
	{1920, 1080},
	{1680, 1050},
	{1536, 864},
	{1440, 900},
	{1366, 768},
}

var standardAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

var hardenedAgents = append([]string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.2365.92",
}, standardAgents...)

var locales = []string{"en-US", "en-GB", "de-DE", "fr-FR"}

var timezones = []string{
	"America/New_York",
	"America/Chicago",
	"America/Los_Angeles",
	"Europe/London",
	"Europe/Paris",
	"Europe/Berlin",
}

func buildTier(agents []string, delayMin, delayMax time.Duration) tier {
	var pool []Fingerprint
	for i, ua := range agents {
		vp := viewports[i%len(viewports)]
		pool = append(pool, Fingerprint{
			UserAgent: ua,
			ViewportW: vp[0],
			ViewportH: vp[1],
			Locale:    locales[i%len(locales)],
			Timezone:  timezones[i%len(timezones)],
		})
	}
	return tier{
		fingerprints: pool,
		navDelayMin:  delayMin,
		navDelayMax:  delayMax,
	}
}

func defaultTiers() map[Profile]tier {
	return map[Profile]tier{
		ProfileStandard: buildTier(standardAgents, 200*time.Millisecond, 800*time.Millisecond),
		ProfileHardened: buildTier(hardenedAgents, 500*time.Millisecond, 3*time.Second),
	}
}
