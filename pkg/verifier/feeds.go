package verifier

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
	"github.com/robfig/cron/v3"

	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/observability/logging"
	"github.com/credgate/credgate/pkg/observability/metrics"
	"github.com/credgate/credgate/pkg/verdict"
)

const (
	// feedMatchMinOverlap is how many content words a headline must share
	// with the text to count as corroboration.
	feedMatchMinOverlap = 3
	// feedRefreshTimeout bounds one scheduled refresh across all feeds.
	feedRefreshTimeout = time.Minute
)

// Headline is one item held in the snapshot.
type Headline struct {
	Title       string
	URL         string
	Domain      string
	PublishedAt time.Time
}

// FeedSnapshot holds recent headlines pulled from trusted-outlet feeds.
// Corroboration consults it before going out to web search; a headline hit
// is evidence just like a search hit. Refresh errors only leave the
// snapshot stale, they never fail a request.
type FeedSnapshot struct {
	parser *gofeed.Parser
	urls   []string
	maxAge time.Duration

	mu        sync.RWMutex
	headlines []Headline

	cron *cron.Cron
}

// NewFeedSnapshot creates an empty snapshot for the configured feeds.
func NewFeedSnapshot(cfg *config.Config) *FeedSnapshot {
	parser := gofeed.NewParser()
	parser.UserAgent = cfg.GetSearchUserAgent()
	return &FeedSnapshot{
		parser: parser,
		urls:   cfg.Verifier.Feeds.URLs,
		maxAge: cfg.GetFeedMaxAge(),
	}
}

// Start refreshes the snapshot once and then on the cron schedule.
func (f *FeedSnapshot) Start(ctx context.Context, schedule string) error {
	if err := f.Refresh(ctx); err != nil {
		logging.Warnf("initial feed refresh incomplete: %v", err)
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		refreshCtx, cancel := context.WithTimeout(context.Background(), feedRefreshTimeout)
		defer cancel()
		if err := f.Refresh(refreshCtx); err != nil {
			logging.Warnf("scheduled feed refresh incomplete: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid feed refresh schedule %q: %w", schedule, err)
	}
	c.Start()
	f.cron = c
	return nil
}

// Stop halts scheduled refreshes. The snapshot stays readable.
func (f *FeedSnapshot) Stop() {
	if f.cron != nil {
		f.cron.Stop()
	}
}

// Refresh pulls every configured feed and swaps in the fresh headline set.
// Items older than the max age or missing a title or link are skipped. The
// returned error is the first fetch failure, for logging; partial results
// still replace the snapshot.
func (f *FeedSnapshot) Refresh(ctx context.Context) error {
	var fresh []Headline
	var firstErr error
	cutoff := time.Now().Add(-f.maxAge)

	for _, feedURL := range f.urls {
		feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			logging.Warnf("feed fetch failed for %s: %v", feedURL, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, item := range feed.Items {
			if item.Title == "" || item.Link == "" {
				continue
			}
			var published time.Time
			if item.PublishedParsed != nil {
				published = *item.PublishedParsed
			}
			if !published.IsZero() && published.Before(cutoff) {
				continue
			}
			fresh = append(fresh, Headline{
				Title:       item.Title,
				URL:         item.Link,
				Domain:      hostDomain(item.Link),
				PublishedAt: published,
			})
		}
	}

	f.mu.Lock()
	f.headlines = fresh
	f.mu.Unlock()

	metrics.RecordFeedRefresh(firstErr)
	metrics.SetFeedHeadlines(len(fresh))
	logging.Infof("feed snapshot refreshed: %d headline(s) from %d feed(s)", len(fresh), len(f.urls))
	return firstErr
}

// Len reports the current headline count.
func (f *FeedSnapshot) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.headlines)
}

// Match returns headlines sharing enough content words with the text,
// bounded like search corroboration.
func (f *FeedSnapshot) Match(text string) []verdict.SourceMatch {
	words := contentWords(text)
	if len(words) < feedMatchMinOverlap {
		return nil
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var matches []verdict.SourceMatch
	for _, headline := range f.headlines {
		if len(matches) >= maxCorroborationMatches {
			break
		}
		if headlineOverlap(words, headline.Title) >= feedMatchMinOverlap {
			matches = append(matches, verdict.SourceMatch{
				Domain: headline.Domain,
				URL:    headline.URL,
				Title:  headline.Title,
			})
		}
	}
	return matches
}

// contentWords collects the distinct meaningful words of the text.
func contentWords(text string) map[string]bool {
	words := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, `.,!?;:"'()[]`)
		if word == "" || correctionStopwords[word] || utf8.RuneCountInString(word) <= correctionMinWordLength {
			continue
		}
		words[word] = true
	}
	return words
}

// headlineOverlap counts distinct content words shared with a headline.
func headlineOverlap(words map[string]bool, title string) int {
	shared := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(title)) {
		word = strings.Trim(word, `.,!?;:"'()[]`)
		if words[word] {
			shared[word] = true
		}
	}
	return len(shared)
}

// hostDomain extracts the bare host of a link for evidence display.
func hostDomain(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return link
	}
	return strings.TrimPrefix(u.Host, "www.")
}
