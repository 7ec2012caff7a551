// Package httprt implements the browser.Runtime boundary over plain
// HTTP. It covers the sources whose pages render server-side and every
// JSON endpoint; a real headless engine can replace it behind the same
// interface without touching the core.
package httprt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/cookiejar"
	"regexp"
	"strconv"
	"strings"
	"time"

	"followtrack-backend/lib/browser"
	"followtrack-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

type Options struct {
	// Timeout bounds a single request. Default: 30s. Attempt-level
	// deadlines still apply through the context.
	Timeout time.Duration
	// DisableBypass turns the cloudflare bypass transport off (tests).
	DisableBypass bool
}

type Runtime struct {
	opts Options
}

func New(opts Options) *Runtime {
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 30
	}
	return &Runtime{opts: opts}
}

// Launch builds a fresh resty client per handle. Each handle owns its
// cookie jar, so no state survives into the next session.
func (rt *Runtime) Launch(ctx context.Context, fp browser.Fingerprint) (browser.Handle, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetCookieJar(jar)
	client.SetTimeout(rt.opts.Timeout)
	client.SetHeader("user-agent", fp.UserAgent)
	client.SetHeader("accept-language", fp.Locale+",en;q=0.8")
	if !rt.opts.DisableBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	telemetry.InstrumentResty(client, "followtrack.browser.httprt")

	return &handle{http: client}, nil
}

type handle struct {
	http *resty.Client

	body     []byte
	finalURL string

	doc      *goquery.Document
	jsonBody any
	jsonErr  error
}

func (h *handle) Navigate(ctx context.Context, url string, headers map[string]string) (browser.NavResult, error) {
	req := h.http.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	res, err := req.Get(url)
	if err != nil {
		return browser.NavResult{}, err
	}

	h.body = res.Body()
	h.doc = nil
	h.jsonBody = nil
	h.jsonErr = nil

	h.finalURL = url
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		h.finalURL = res.RawResponse.Request.URL.String()
	}

	return browser.NavResult{
		FinalURL:   h.finalURL,
		StatusCode: res.StatusCode(),
	}, nil
}

func (h *handle) Locate(loc browser.Locator) (browser.Element, bool, error) {
	if h.body == nil {
		return nil, false, fmt.Errorf("locate before navigation")
	}

	switch loc.Kind {
	case browser.LocatorCSS:
		return h.locateCSS(loc.Query)
	case browser.LocatorJSON:
		return h.locateJSON(loc.Query)
	case browser.LocatorRegex:
		return h.locateRegex(loc.Query)
	}
	return nil, false, fmt.Errorf("unknown locator kind %d", loc.Kind)
}

func (h *handle) Close() error {
	h.http.GetClient().CloseIdleConnections()
	h.body = nil
	h.doc = nil
	h.jsonBody = nil
	return nil
}

type textElement string

func (e textElement) Text() string { return string(e) }

func (h *handle) locateCSS(query string) (browser.Element, bool, error) {
	if h.doc == nil {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(h.body))
		if err != nil {
			return nil, false, err
		}
		h.doc = doc
	}

	sel := h.doc.Find(query).First()
	if sel.Length() == 0 {
		return nil, false, nil
	}

	text := strings.TrimSpace(sel.Text())
	if text == "" {
		// meta and input carry their value in an attribute
		text = sel.AttrOr("content", sel.AttrOr("value", ""))
	}
	return textElement(text), true, nil
}

func (h *handle) locateJSON(path string) (browser.Element, bool, error) {
	if h.jsonBody == nil && h.jsonErr == nil {
		h.jsonErr = json.Unmarshal(h.body, &h.jsonBody)
	}
	if h.jsonErr != nil {
		return nil, false, nil
	}

	current := h.jsonBody
	for _, seg := range strings.Split(path, ".") {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[seg]
			if !ok {
				return nil, false, nil
			}
			current = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(v) {
				return nil, false, nil
			}
			current = v[i]
		default:
			return nil, false, nil
		}
	}

	switch v := current.(type) {
	case string:
		return textElement(v), true, nil
	case float64:
		return textElement(strconv.FormatFloat(v, 'f', -1, 64)), true, nil
	case bool:
		return textElement(strconv.FormatBool(v)), true, nil
	case nil:
		return nil, false, nil
	default:
		return nil, false, nil
	}
}

func (h *handle) locateRegex(pattern string) (browser.Element, bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, false, err
	}

	m := re.FindSubmatch(h.body)
	if m == nil {
		return nil, false, nil
	}
	if len(m) > 1 {
		return textElement(string(m[1])), true, nil
	}
	return textElement(string(m[0])), true, nil
}
