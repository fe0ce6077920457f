package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/credgate/credgate/pkg/config"
)

const serpPage = `<!DOCTYPE html>
<html>
<body>
<div class="serp__results">
  <div class="result results_links results_links_deep web-result">
    <h2 class="result__title">
      <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.reuters.com%2Fworld%2Fexample-story%2F&amp;rut=abc123">
        Example story headline
      </a>
    </h2>
  </div>
  <div class="result result--ad">
    <h2 class="result__title">
      <a class="result__a" href="https://ads.example.com/landing">Sponsored placement</a>
    </h2>
  </div>
  <div class="result results_links results_links_deep web-result">
    <h2 class="result__title">
      <a class="result__a" href="https://www.bbc.com/news/world-12345">BBC coverage</a>
    </h2>
  </div>
  <div class="result results_links results_links_deep web-result">
    <h2 class="result__title">
      <a class="result__a" href="https://example.org/third">Third hit</a>
    </h2>
  </div>
</div>
</body>
</html>`

func TestDuckDuckGoSearch(t *testing.T) {
	var gotQuery, gotUA, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.FormValue("q")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(serpPage))
	}))
	defer server.Close()

	provider := NewDuckDuckGo(Options{
		Endpoint:  server.URL,
		Timeout:   5 * time.Second,
		UserAgent: "credgate-test",
	})

	results, err := provider.Search(context.Background(), "mars colony announcement", 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("Expected POST request, got %s", gotMethod)
	}
	if gotQuery != "mars colony announcement" {
		t.Errorf("Expected query to be forwarded, got %q", gotQuery)
	}
	if gotUA != "credgate-test" {
		t.Errorf("Expected User-Agent header, got %q", gotUA)
	}

	want := []Result{
		{URL: "https://www.reuters.com/world/example-story/", Title: "Example story headline"},
		{URL: "https://www.bbc.com/news/world-12345", Title: "BBC coverage"},
		{URL: "https://example.org/third", Title: "Third hit"},
	}
	if len(results) != len(want) {
		t.Fatalf("Expected %d results, got %d: %v", len(want), len(results), results)
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("Result %d: got %+v, want %+v", i, results[i], want[i])
		}
	}
}

func TestDuckDuckGoSearchMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(serpPage))
	}))
	defer server.Close()

	provider := NewDuckDuckGo(Options{Endpoint: server.URL})
	results, err := provider.Search(context.Background(), "query", 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected result cap of 2, got %d", len(results))
	}
	if results[1].URL != "https://www.bbc.com/news/world-12345" {
		t.Errorf("Expected cap to count organic results only, got %q", results[1].URL)
	}
}

func TestDuckDuckGoSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := NewDuckDuckGo(Options{Endpoint: server.URL})
	if _, err := provider.Search(context.Background(), "query", 10); err == nil {
		t.Error("Expected error for non-2xx response")
	}
}

func TestDuckDuckGoSearchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(serpPage))
	}))
	defer server.Close()

	provider := NewDuckDuckGo(Options{Endpoint: server.URL, Timeout: 50 * time.Millisecond})
	if _, err := provider.Search(context.Background(), "query", 10); err == nil {
		t.Error("Expected timeout error")
	}
}

func TestUnwrapRedirect(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{
			name: "direct link passes through",
			href: "https://www.bbc.com/news/world-12345",
			want: "https://www.bbc.com/news/world-12345",
		},
		{
			name: "redirect wrapper is unwrapped",
			href: "//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.reuters.com%2Farticle%2F1&rut=xyz",
			want: "https://www.reuters.com/article/1",
		},
		{
			name: "wrapper without uddg passes through",
			href: "//duckduckgo.com/l/?rut=xyz",
			want: "//duckduckgo.com/l/?rut=xyz",
		},
		{
			name: "unparseable href passes through",
			href: "https://example.com/%zz",
			want: "https://example.com/%zz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := unwrapRedirect(tt.href); got != tt.want {
				t.Errorf("unwrapRedirect(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}

func TestNewProviderFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Verifier.Search.Provider = "duckduckgo"

	provider, err := NewProviderFromConfig(cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if provider.Name() != ProviderNameDuckDuckGo {
		t.Errorf("Expected duckduckgo provider, got %q", provider.Name())
	}

	// Empty provider name falls back to the default.
	cfg.Verifier.Search.Provider = ""
	if _, err := NewProviderFromConfig(cfg); err != nil {
		t.Errorf("Expected default provider for empty name, got error: %v", err)
	}

	cfg.Verifier.Search.Provider = "bing"
	if _, err := NewProviderFromConfig(cfg); err == nil {
		t.Error("Expected error for unsupported provider")
	} else if !strings.Contains(err.Error(), "unsupported search provider") {
		t.Errorf("Unexpected error message: %v", err)
	}
}
