package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/credgate/credgate/pkg/observability/logging"
	"github.com/credgate/credgate/pkg/observability/metrics"
)

// ProviderNameDuckDuckGo selects the DuckDuckGo HTML provider.
const ProviderNameDuckDuckGo = "duckduckgo"

// defaultEndpoint is the no-JavaScript HTML results page.
const defaultEndpoint = "https://html.duckduckgo.com/html/"

// DuckDuckGo queries the DuckDuckGo HTML endpoint and scrapes the result
// list. The HTML endpoint needs no API key and serves static markup.
type DuckDuckGo struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
}

// Options configures a DuckDuckGo provider. Zero values fall back to the
// public endpoint, a 10s timeout, and no User-Agent header.
type Options struct {
	// Endpoint overrides the public HTML endpoint (tests point this at a
	// local server).
	Endpoint string
	// Timeout bounds the whole search call.
	Timeout time.Duration
	// UserAgent is sent with every request.
	UserAgent string
}

// NewDuckDuckGo creates a DuckDuckGo HTML search provider.
func NewDuckDuckGo(opts Options) *DuckDuckGo {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DuckDuckGo{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		userAgent:  opts.UserAgent,
	}
}

// Name identifies the provider in logs and metrics.
func (d *DuckDuckGo) Name() string { return ProviderNameDuckDuckGo }

// Search posts the query to the HTML endpoint and parses the result list.
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	start := time.Now()
	resp, err := d.httpClient.Do(req)
	if err != nil {
		metrics.RecordSearchRequest(d.Name(), "error")
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordSearchLatency(d.Name(), time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordSearchRequest(d.Name(), "error")
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		metrics.RecordSearchRequest(d.Name(), "error")
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	var results []Result
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if maxResults > 0 && len(results) >= maxResults {
			return false
		}
		// Sponsored results carry the result--ad modifier class.
		if s.HasClass("result--ad") {
			return true
		}
		anchor := s.Find("a.result__a").First()
		href, ok := anchor.Attr("href")
		if !ok || href == "" {
			return true
		}
		results = append(results, Result{
			URL:   unwrapRedirect(href),
			Title: strings.TrimSpace(anchor.Text()),
		})
		return true
	})

	metrics.RecordSearchRequest(d.Name(), "success")
	logging.Debugf("search: provider=%s query=%q results=%d", d.Name(), query, len(results))
	return results, nil
}

// unwrapRedirect resolves DuckDuckGo's /l/?uddg=<escaped-target> links to
// the landing page URL. Anything unparseable passes through untouched.
func unwrapRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
