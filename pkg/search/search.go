// Package search provides bounded web search used to corroborate claims
// against trusted outlets. Providers return at most the requested number
// of results and never follow result links.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/credgate/credgate/pkg/config"
)

// Result is a single search hit.
type Result struct {
	// URL is the landing page of the hit, with any provider redirect
	// wrapper already unwrapped.
	URL string `json:"url"`
	// Title is the hit's display title.
	Title string `json:"title"`
}

// Provider performs a bounded web search.
type Provider interface {
	// Search runs the query and returns up to maxResults hits. A
	// maxResults of zero or less means the provider's natural page size.
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
	// Name identifies the provider in logs and metrics.
	Name() string
}

// NewProviderFromConfig builds the configured search provider.
func NewProviderFromConfig(cfg *config.Config) (Provider, error) {
	name := strings.ToLower(cfg.GetSearchProvider())
	switch name {
	case ProviderNameDuckDuckGo:
		return NewDuckDuckGo(Options{
			Endpoint:  cfg.Verifier.Search.Endpoint,
			Timeout:   cfg.GetSearchTimeout(),
			UserAgent: cfg.GetSearchUserAgent(),
		}), nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %q", name)
	}
}
