// Package verifier corroborates claims against trusted news outlets and
// looks up fact-check coverage for rejected ones. Both lookups run through
// bounded web search, are memoized by exact query, and degrade to "no
// evidence" on any failure; a verifier error never reaches the caller.
package verifier

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/credgate/credgate/pkg/cache"
	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/observability/logging"
	"github.com/credgate/credgate/pkg/search"
	"github.com/credgate/credgate/pkg/verdict"
)

const (
	// corroborationQueryLength is how much of the text becomes the query.
	corroborationQueryLength = 100
	// maxCorroborationMatches bounds the evidence kept per request.
	maxCorroborationMatches = 3
	// correctionQueryKeywords is how many content words seed the query.
	correctionQueryKeywords = 5
	// correctionMinWordLength excludes short filler words from the query.
	correctionMinWordLength = 3
)

// DefaultTrustedDomains is the compiled-in corroboration allowlist:
// established news organizations, reference sites, and scientific or
// governmental publishers.
var DefaultTrustedDomains = []string{
	"bbc.com", "reuters.com", "cnn.com", "nytimes.com", "washingtonpost.com",
	"theguardian.com", "apnews.com", "npr.org", "bloomberg.com", "wsj.com",
	"nbcnews.com", "abcnews.go.com", "cbsnews.com", "usatoday.com", "time.com",
	"forbes.com", "economist.com", "ft.com", "snopes.com", "politifact.com",
	"wikipedia.org", "britannica.com", "nationalgeographic.com", "history.com",
	"science.org", "nature.com", "nasa.gov", "who.int", "cdc.gov",
}

// DefaultFactCheckDomains is the compiled-in allowlist for correction
// lookups: dedicated fact-checking outlets plus wire services with
// fact-check desks.
var DefaultFactCheckDomains = []string{
	"snopes.com", "politifact.com", "factcheck.org", "fullfact.org",
	"apnews.com", "reuters.com",
}

// correctionStopwords are dropped when building the correction query.
// The sensational terms attract clickbait results instead of fact-check
// coverage, so they count as noise here too.
var correctionStopwords = map[string]bool{
	"the": true, "is": true, "at": true, "which": true, "on": true,
	"a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "with": true, "to": true, "of": true, "for": true,
	"by": true, "secret": true, "shocking": true, "revealed": true,
	"banned": true, "yesterday": true, "today": true,
}

// Verifier issues corroboration and correction lookups through a search
// provider, fronted by per-lookup caches.
type Verifier struct {
	provider         search.Provider
	corroboration    *cache.LookupCache
	correction       *cache.LookupCache
	trustedDomains   []string
	factCheckDomains []string
	maxResults       int
	feeds            *FeedSnapshot
}

// New creates a Verifier. Domain allowlists fall back to the compiled-in
// defaults when the config leaves them empty.
func New(provider search.Provider, cfg *config.Config) *Verifier {
	trusted := cfg.Verifier.TrustedDomains
	if len(trusted) == 0 {
		trusted = DefaultTrustedDomains
	}
	factCheck := cfg.Verifier.FactCheckDomains
	if len(factCheck) == 0 {
		factCheck = DefaultFactCheckDomains
	}
	return &Verifier{
		provider:         provider,
		trustedDomains:   trusted,
		factCheckDomains: factCheck,
		maxResults:       cfg.GetSearchMaxResults(),
		corroboration: cache.NewLookupCache(cache.Options{
			Name:     "corroboration",
			Capacity: cfg.GetCorroborationCacheCapacity(),
			Policy:   cfg.Cache.Corroboration.EvictionPolicy,
		}),
		correction: cache.NewLookupCache(cache.Options{
			Name:     "correction",
			Capacity: cfg.GetCorrectionCacheCapacity(),
			Policy:   cfg.Cache.Correction.EvictionPolicy,
		}),
	}
}

// WithFeeds attaches a feed snapshot consulted before web search during
// corroboration.
func (v *Verifier) WithFeeds(feeds *FeedSnapshot) *Verifier {
	v.feeds = feeds
	return v
}

// FindSources corroborates the text against the trusted-domain allowlist.
// The result is possibly empty and never an error: search failures degrade
// to no evidence.
func (v *Verifier) FindSources(ctx context.Context, text string) []verdict.SourceMatch {
	query := corroborationQuery(text)
	logging.Debugf("corroboration query: %q", query)

	value, err := v.corroboration.GetOrLookup(ctx, query, v.lookupSources)
	if err != nil {
		logging.Warnf("corroboration search degraded to no evidence: %v", err)
		return []verdict.SourceMatch{}
	}
	matches, ok := value.([]verdict.SourceMatch)
	if !ok {
		return []verdict.SourceMatch{}
	}
	return matches
}

// FindCorrection looks for fact-check coverage of the claim. Nil means no
// correction was found; search failures also degrade to nil.
func (v *Verifier) FindCorrection(ctx context.Context, text string) *verdict.Correction {
	query := correctionQuery(text)
	logging.Debugf("correction query: %q", query)

	value, err := v.correction.GetOrLookup(ctx, query, v.lookupCorrection)
	if err != nil {
		logging.Warnf("correction search degraded: %v", err)
		return nil
	}
	correction, ok := value.(*verdict.Correction)
	if !ok {
		return nil
	}
	return correction
}

// CacheStats reports both lookup caches for health output.
func (v *Verifier) CacheStats() []cache.Stats {
	return []cache.Stats{v.corroboration.Stats(), v.correction.Stats()}
}

func (v *Verifier) lookupSources(ctx context.Context, query string) (any, error) {
	if v.feeds != nil {
		if matches := v.feeds.Match(query); len(matches) > 0 {
			logging.Debugf("corroboration served from feed snapshot: %d match(es)", len(matches))
			return matches, nil
		}
	}

	results, err := v.provider.Search(ctx, query, v.maxResults)
	if err != nil {
		return nil, err
	}

	matches := []verdict.SourceMatch{}
	for _, result := range results {
		if len(matches) >= maxCorroborationMatches {
			break
		}
		if domain := matchDomain(result.URL, v.trustedDomains); domain != "" {
			logging.Infof("corroboration match: %s in %s", domain, result.URL)
			matches = append(matches, verdict.SourceMatch{
				Domain: domain,
				URL:    result.URL,
				Title:  result.Title,
			})
		}
	}
	return matches, nil
}

func (v *Verifier) lookupCorrection(ctx context.Context, query string) (any, error) {
	results, err := v.provider.Search(ctx, query, v.maxResults)
	if err != nil {
		return nil, err
	}

	for _, result := range results {
		if domain := matchDomain(result.URL, v.factCheckDomains); domain != "" {
			logging.Infof("correction found: %q from %s", result.Title, domain)
			return &verdict.Correction{
				Domain: domain,
				URL:    result.URL,
				Title:  result.Title,
			}, nil
		}
	}
	// The absence of a correction is cached like any other answer.
	return (*verdict.Correction)(nil), nil
}

// matchDomain returns the first allowlisted domain the URL contains.
func matchDomain(url string, domains []string) string {
	for _, domain := range domains {
		if strings.Contains(url, domain) {
			return domain
		}
	}
	return ""
}

// corroborationQuery takes the leading characters of the text verbatim.
func corroborationQuery(text string) string {
	runes := []rune(text)
	if len(runes) > corroborationQueryLength {
		runes = runes[:corroborationQueryLength]
	}
	return string(runes)
}

// correctionQuery keeps the first content words of the lowered text and
// frames them as a fact-check search.
func correctionQuery(text string) string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len(keywords) == correctionQueryKeywords {
			break
		}
		if correctionStopwords[word] || utf8.RuneCountInString(word) <= correctionMinWordLength {
			continue
		}
		keywords = append(keywords, word)
	}
	return strings.Join(keywords, " ") + " fact check"
}
