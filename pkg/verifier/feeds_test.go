package verifier

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/credgate/credgate/pkg/config"
)

func TestFeedSnapshotMatch(t *testing.T) {
	snapshot := &FeedSnapshot{headlines: []Headline{
		{Title: "Space agency confirms Mars outpost mission for next decade", URL: "https://example-news.com/mars", Domain: "example-news.com"},
		{Title: "Markets close higher after rate decision", URL: "https://example-news.com/markets", Domain: "example-news.com"},
	}}

	tests := []struct {
		name        string
		text        string
		wantMatches int
	}{
		{
			name:        "three shared content words match",
			text:        "The space agency just confirms a new Mars mission",
			wantMatches: 1,
		},
		{
			name:        "unrelated text does not match",
			text:        "Celebrity spotted wearing unusual outfit during vacation",
			wantMatches: 0,
		},
		{
			name:        "two shared words are not enough",
			text:        "Mars mission gets a sequel in cinemas",
			wantMatches: 0,
		},
		{
			name:        "short text never matches",
			text:        "Mars mission",
			wantMatches: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := snapshot.Match(tt.text)
			if len(matches) != tt.wantMatches {
				t.Errorf("Match(%q) returned %d matches, want %d: %v", tt.text, len(matches), tt.wantMatches, matches)
			}
		})
	}
}

func TestFeedSnapshotMatchCap(t *testing.T) {
	var headlines []Headline
	for i := 0; i < 5; i++ {
		headlines = append(headlines, Headline{
			Title:  "Space agency confirms Mars outpost mission",
			URL:    fmt.Sprintf("https://example-news.com/mars-%d", i),
			Domain: "example-news.com",
		})
	}
	snapshot := &FeedSnapshot{headlines: headlines}

	matches := snapshot.Match("The space agency confirms the Mars outpost mission is funded")
	if len(matches) != maxCorroborationMatches {
		t.Errorf("Expected matches capped at %d, got %d", maxCorroborationMatches, len(matches))
	}
}

func TestContentWords(t *testing.T) {
	words := contentWords(`The government, announced "secret" plans today!`)

	for _, want := range []string{"government", "announced", "plans"} {
		if !words[want] {
			t.Errorf("Expected content word %q in %v", want, words)
		}
	}
	for _, reject := range []string{"the", "secret", "today", ""} {
		if words[reject] {
			t.Errorf("Expected %q to be filtered out", reject)
		}
	}
}

func TestHostDomain(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://www.bbc.com/news/world-123", "bbc.com"},
		{"https://apnews.com/article/x", "apnews.com"},
		{"not a url", "not a url"},
	}
	for _, tt := range tests {
		if got := hostDomain(tt.link); got != tt.want {
			t.Errorf("hostDomain(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}

func TestFeedSnapshotRefresh(t *testing.T) {
	recent := time.Now().Format(time.RFC1123Z)
	stale := time.Now().Add(-72 * time.Hour).Format(time.RFC1123Z)
	rss := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Outlet</title>
    <item>
      <title>Space agency confirms Mars outpost mission</title>
      <link>https://www.example-news.com/mars-outpost</link>
      <pubDate>%s</pubDate>
    </item>
    <item>
      <title>Old story well past the age cutoff</title>
      <link>https://www.example-news.com/old-story</link>
      <pubDate>%s</pubDate>
    </item>
    <item>
      <title></title>
      <link>https://www.example-news.com/untitled</link>
    </item>
  </channel>
</rss>`, recent, stale)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rss)
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.Verifier.Feeds.URLs = []string{server.URL}
	snapshot := NewFeedSnapshot(cfg)

	if err := snapshot.Refresh(context.Background()); err != nil {
		t.Fatalf("Unexpected refresh error: %v", err)
	}
	if snapshot.Len() != 1 {
		t.Fatalf("Expected 1 fresh headline, got %d", snapshot.Len())
	}

	matches := snapshot.Match("Reports say the space agency confirms a Mars outpost")
	if len(matches) != 1 {
		t.Fatalf("Expected snapshot match, got %v", matches)
	}
	if matches[0].Domain != "example-news.com" {
		t.Errorf("Expected domain from item link, got %q", matches[0].Domain)
	}
}

func TestFeedSnapshotRefreshError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := &config.Config{}
	cfg.Verifier.Feeds.URLs = []string{server.URL}
	snapshot := NewFeedSnapshot(cfg)

	if err := snapshot.Refresh(context.Background()); err == nil {
		t.Error("Expected refresh error for failing feed")
	}
	if snapshot.Len() != 0 {
		t.Errorf("Expected empty snapshot, got %d headlines", snapshot.Len())
	}
}
