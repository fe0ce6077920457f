// Package extract fetches a web page and pulls readable article text out of
// it. Extraction is best-effort scraping: paragraph text is kept, page
// chrome and active content are discarded, and anything that survives is
// sanitized before the pipeline sees it.
package extract

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/observability/logging"
	"github.com/credgate/credgate/pkg/observability/metrics"
)

// ErrNoUsableText reports that the page fetched fine but contained no
// article text long enough to analyze.
var ErrNoUsableText = errors.New("no usable article text")

// chromeSelector matches page furniture removed before paragraph collection.
const chromeSelector = "script, style, noscript, nav, header, footer, aside, form"

// Extractor fetches pages and extracts their article text.
type Extractor struct {
	httpClient *http.Client
	sanitizer  *bluemonday.Policy
	userAgent  string
	minLength  int
}

// Options configures an Extractor. Zero values mean a 10s timeout, no
// User-Agent header, and a 50-rune minimum.
type Options struct {
	// Timeout bounds one page fetch.
	Timeout time.Duration
	// UserAgent is sent with every fetch.
	UserAgent string
	// MinTextLength is the shortest extraction considered usable, in runes.
	MinTextLength int
}

// New creates an Extractor.
func New(opts Options) *Extractor {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	minLength := opts.MinTextLength
	if minLength <= 0 {
		minLength = 50
	}
	return &Extractor{
		httpClient: &http.Client{Timeout: timeout},
		sanitizer:  bluemonday.StrictPolicy(),
		userAgent:  opts.UserAgent,
		minLength:  minLength,
	}
}

// NewFromConfig creates an Extractor from the extraction config section.
func NewFromConfig(cfg *config.Config) *Extractor {
	return New(Options{
		Timeout:       cfg.GetExtractionTimeout(),
		UserAgent:     cfg.Extraction.UserAgent,
		MinTextLength: cfg.GetMinTextLength(),
	})
}

// Text fetches pageURL and returns its article text with whitespace
// collapsed. Any error means the page yielded nothing worth analyzing.
func (e *Extractor) Text(ctx context.Context, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		metrics.RecordExtraction("invalid_url")
		return "", fmt.Errorf("invalid article URL: %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create fetch request: %w", err)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		metrics.RecordExtraction("fetch_error")
		return "", fmt.Errorf("page fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordExtraction("fetch_error")
		return "", fmt.Errorf("page fetch returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		metrics.RecordExtraction("parse_error")
		return "", fmt.Errorf("failed to parse page: %w", err)
	}
	doc.Find(chromeSelector).Remove()

	// Paragraphs inside an article element are the strongest signal;
	// fall back to every remaining paragraph on the page.
	paragraphs := e.collectParagraphs(doc.Find("article p"))
	if len(paragraphs) == 0 {
		paragraphs = e.collectParagraphs(doc.Find("p"))
	}

	text := strings.Join(strings.Fields(strings.Join(paragraphs, " ")), " ")
	if utf8.RuneCountInString(text) < e.minLength {
		metrics.RecordExtraction("no_text")
		return "", fmt.Errorf("%w at %s", ErrNoUsableText, u.Host)
	}

	metrics.RecordExtraction("success")
	logging.Debugf("extract: host=%s chars=%d paragraphs=%d", u.Host, len(text), len(paragraphs))
	return text, nil
}

// collectParagraphs sanitizes each paragraph's markup down to plain text.
func (e *Extractor) collectParagraphs(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		inner, err := s.Html()
		if err != nil {
			return
		}
		text := html.UnescapeString(e.sanitizer.Sanitize(inner))
		text = strings.TrimSpace(text)
		if text != "" {
			out = append(out, text)
		}
	})
	return out
}
