// Package cache memoizes external lookup results by exact key. Concurrent
// misses on the same key are coalesced so the backing lookup runs at most
// once per key, and empty results are cached exactly like non-empty ones.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/credgate/credgate/pkg/observability/metrics"
)

// LookupFunc computes the value for a missing key. A nil error caches the
// returned value, whatever it is; errors are never cached.
type LookupFunc func(ctx context.Context, key string) (any, error)

// Options configures a LookupCache.
type Options struct {
	// Name labels the cache in metrics and health output.
	Name string

	// Capacity is the entry limit; zero or negative means unbounded.
	Capacity int

	// Policy is the eviction policy name: lru, lfu, or fifo.
	Policy string
}

// Entry is one cached lookup result. Values are immutable once stored.
type Entry struct {
	Key          string
	Value        any
	StoredAt     time.Time
	LastAccessAt time.Time
	HitCount     int64
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Name      string `json:"name"`
	Entries   int    `json:"entries"`
	Capacity  int    `json:"capacity"`
	Hits      int64  `json:"hits"`
	Misses    int64  `json:"misses"`
	Evictions int64  `json:"evictions"`
}

// LookupCache is a bounded, thread-safe memoization cache with single-flight
// de-duplication of concurrent misses.
type LookupCache struct {
	name     string
	capacity int
	policy   EvictionPolicy

	mu      sync.Mutex
	entries []*Entry
	index   map[string]*Entry
	flight  singleflight.Group

	hits      int64
	misses    int64
	evictions int64
}

// NewLookupCache builds a cache from options. Unknown policy names fall
// back to LRU.
func NewLookupCache(opts Options) *LookupCache {
	return &LookupCache{
		name:     opts.Name,
		capacity: opts.Capacity,
		policy:   NewEvictionPolicy(opts.Policy),
		index:    make(map[string]*Entry),
	}
}

// Get returns the cached value for key. The second result reports whether
// the key was present; a cached empty value still reports true.
func (c *LookupCache) Get(key string) (any, bool) {
	value, ok := c.lookup(key)
	if ok {
		atomic.AddInt64(&c.hits, 1)
		metrics.RecordCacheOperation(c.name, "hit")
	} else {
		atomic.AddInt64(&c.misses, 1)
		metrics.RecordCacheOperation(c.name, "miss")
	}
	return value, ok
}

// lookup fetches a key and refreshes its recency without touching counters.
func (c *LookupCache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index[key]
	if !ok {
		return nil, false
	}
	entry.LastAccessAt = time.Now()
	entry.HitCount++
	return entry.Value, true
}

// GetOrLookup returns the cached value for key, or runs lookup to compute
// and cache it. Concurrent callers missing on the same key share a single
// lookup invocation and its result. Lookup errors propagate to every waiter
// and leave the cache unchanged.
func (c *LookupCache) GetOrLookup(ctx context.Context, key string, lookup LookupFunc) (any, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value, err, _ := c.flight.Do(key, func() (interface{}, error) {
		// A waiter queued behind the winner finds the value already stored.
		if value, ok := c.lookup(key); ok {
			return value, nil
		}
		value, err := lookup(ctx, key)
		if err != nil {
			return nil, err
		}
		c.Put(key, value)
		return value, nil
	})
	return value, err
}

// Put stores a value, evicting per policy when the cache is at capacity.
// Storing an existing key replaces its value and refreshes its recency.
func (c *LookupCache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if entry, ok := c.index[key]; ok {
		entry.Value = value
		entry.LastAccessAt = now
		return
	}

	if c.capacity > 0 && len(c.entries) >= c.capacity {
		c.evictLocked()
	}

	entry := &Entry{
		Key:          key,
		Value:        value,
		StoredAt:     now,
		LastAccessAt: now,
	}
	c.entries = append(c.entries, entry)
	c.index[key] = entry
	metrics.SetCacheEntries(c.name, len(c.entries))
}

// evictLocked removes the policy's victim. Caller holds c.mu.
func (c *LookupCache) evictLocked() {
	victim := c.policy.SelectVictim(c.entries)
	if victim < 0 {
		return
	}

	delete(c.index, c.entries[victim].Key)
	last := len(c.entries) - 1
	c.entries[victim] = c.entries[last]
	c.entries[last] = nil
	c.entries = c.entries[:last]

	atomic.AddInt64(&c.evictions, 1)
	metrics.RecordCacheOperation(c.name, "evict")
	metrics.SetCacheEntries(c.name, len(c.entries))
}

// Len returns the current entry count.
func (c *LookupCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *LookupCache) Stats() Stats {
	c.mu.Lock()
	entries := len(c.entries)
	c.mu.Unlock()

	return Stats{
		Name:      c.name,
		Entries:   entries,
		Capacity:  c.capacity,
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Evictions: atomic.LoadInt64(&c.evictions),
	}
}
