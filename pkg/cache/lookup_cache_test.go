package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLookupCachePutGet(t *testing.T) {
	c := NewLookupCache(Options{Name: "test", Capacity: 4})

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected miss for key that was never stored")
	}

	c.Put("query", []string{"example.com"})
	value, ok := c.Get("query")
	if !ok {
		t.Fatal("Expected hit after Put")
	}
	domains, ok := value.([]string)
	if !ok || len(domains) != 1 || domains[0] != "example.com" {
		t.Errorf("Unexpected cached value: %v", value)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d/%d", stats.Hits, stats.Misses)
	}
}

func TestLookupCacheStoresEmptyResults(t *testing.T) {
	// A lookup that legitimately found nothing is still a cacheable answer.
	c := NewLookupCache(Options{Name: "test", Capacity: 4})
	c.Put("obscure claim", []string{})

	value, ok := c.Get("obscure claim")
	if !ok {
		t.Fatal("Expected empty result to be served from cache")
	}
	if domains, isSlice := value.([]string); !isSlice || len(domains) != 0 {
		t.Errorf("Expected empty slice, got %v", value)
	}
}

func TestLookupCacheCapacityEviction(t *testing.T) {
	c := NewLookupCache(Options{Name: "test", Capacity: 3, Policy: LRUEvictionPolicyType})

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// Touch "a" so "b" becomes the least recently used entry.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Expected hit for a")
	}

	c.Put("d", 4)

	if c.Len() != 3 {
		t.Errorf("Expected capacity to hold at 3 entries, got %d", c.Len())
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Expected least recently used entry b to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("Expected entry %q to survive eviction", key)
		}
	}
	if evictions := c.Stats().Evictions; evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", evictions)
	}
}

func TestLookupCachePutReplacesExisting(t *testing.T) {
	c := NewLookupCache(Options{Name: "test", Capacity: 2})

	c.Put("key", "old")
	c.Put("key", "new")

	if c.Len() != 1 {
		t.Errorf("Expected replacement to keep a single entry, got %d", c.Len())
	}
	value, _ := c.Get("key")
	if value != "new" {
		t.Errorf("Expected replaced value, got %v", value)
	}
}

func TestGetOrLookupCallsBackendOnce(t *testing.T) {
	c := NewLookupCache(Options{Name: "test", Capacity: 4})
	calls := 0
	lookup := func(ctx context.Context, key string) (any, error) {
		calls++
		return "result for " + key, nil
	}

	for i := 0; i < 3; i++ {
		value, err := c.GetOrLookup(context.Background(), "query", lookup)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if value != "result for query" {
			t.Errorf("Unexpected value: %v", value)
		}
	}

	if calls != 1 {
		t.Errorf("Expected exactly one backend call, got %d", calls)
	}
}

func TestGetOrLookupCoalescesConcurrentMisses(t *testing.T) {
	c := NewLookupCache(Options{Name: "test", Capacity: 4})
	var calls int64
	lookup := func(ctx context.Context, key string) (any, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		return "shared", nil
	}

	const workers = 10
	var wg sync.WaitGroup
	results := make([]any, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			results[slot], errs[slot] = c.GetOrLookup(context.Background(), "hot-key", lookup)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("Worker %d got error: %v", i, errs[i])
		}
		if results[i] != "shared" {
			t.Errorf("Worker %d got %v, want shared", i, results[i])
		}
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Errorf("Expected concurrent misses to coalesce into 1 backend call, got %d", got)
	}
}

func TestGetOrLookupDoesNotCacheErrors(t *testing.T) {
	c := NewLookupCache(Options{Name: "test", Capacity: 4})
	calls := 0
	failing := errors.New("search unavailable")
	lookup := func(ctx context.Context, key string) (any, error) {
		calls++
		if calls == 1 {
			return nil, failing
		}
		return "recovered", nil
	}

	if _, err := c.GetOrLookup(context.Background(), "query", lookup); !errors.Is(err, failing) {
		t.Fatalf("Expected lookup error to propagate, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Expected failed lookup to leave cache empty, got %d entries", c.Len())
	}

	value, err := c.GetOrLookup(context.Background(), "query", lookup)
	if err != nil {
		t.Fatalf("Unexpected error on retry: %v", err)
	}
	if value != "recovered" {
		t.Errorf("Expected retry to reach the backend, got %v", value)
	}
	if calls != 2 {
		t.Errorf("Expected 2 backend calls, got %d", calls)
	}
}

func TestLookupCacheStats(t *testing.T) {
	c := NewLookupCache(Options{Name: "corroboration", Capacity: 2})

	c.Get("miss1")
	c.Get("miss2")
	c.Put("a", 1)
	c.Get("a")
	c.Put("b", 2)
	c.Put("c", 3)

	stats := c.Stats()
	if stats.Name != "corroboration" {
		t.Errorf("Expected cache name in stats, got %q", stats.Name)
	}
	if stats.Capacity != 2 {
		t.Errorf("Expected capacity 2, got %d", stats.Capacity)
	}
	if stats.Entries != 2 {
		t.Errorf("Expected 2 entries, got %d", stats.Entries)
	}
	if stats.Hits != 1 {
		t.Errorf("Expected 1 hit, got %d", stats.Hits)
	}
	if stats.Misses != 2 {
		t.Errorf("Expected 2 misses, got %d", stats.Misses)
	}
	if stats.Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", stats.Evictions)
	}
}

func TestLookupCacheConcurrentAccess(t *testing.T) {
	c := NewLookupCache(Options{Name: "test", Capacity: 16})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				key := fmt.Sprintf("key-%d", (n+j)%20)
				c.Put(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 16 {
		t.Errorf("Expected at most 16 entries after concurrent writes, got %d", c.Len())
	}
}
