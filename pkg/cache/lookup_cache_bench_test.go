package cache

import (
	"context"
	"strconv"
	"testing"
)

// fillCache stores n sequential keys so benchmarks start from a warm cache.
func fillCache(c *LookupCache, n int) {
	for i := 0; i < n; i++ {
		c.Put("key-"+strconv.Itoa(i), i)
	}
}

func BenchmarkLookupCacheHit(b *testing.B) {
	c := NewLookupCache(Options{Name: "bench", Capacity: 1024})
	fillCache(c, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("key-" + strconv.Itoa(i%1024))
	}
}

func BenchmarkLookupCacheMiss(b *testing.B) {
	c := NewLookupCache(Options{Name: "bench", Capacity: 1024})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("absent-" + strconv.Itoa(i))
	}
}

func BenchmarkLookupCachePutAtCapacity(b *testing.B) {
	// Every Put into a full cache pays one victim scan plus one eviction.
	policies := []string{LRUEvictionPolicyType, LFUEvictionPolicyType, FIFOEvictionPolicyType}
	sizes := []int{128, 1024}

	for _, policy := range policies {
		for _, size := range sizes {
			b.Run(policy+"/"+strconv.Itoa(size), func(b *testing.B) {
				c := NewLookupCache(Options{Name: "bench", Capacity: size, Policy: policy})
				fillCache(c, size)

				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					c.Put("new-"+strconv.Itoa(i), i)
				}
			})
		}
	}
}

func BenchmarkGetOrLookupCached(b *testing.B) {
	c := NewLookupCache(Options{Name: "bench", Capacity: 16})
	lookup := func(ctx context.Context, key string) (any, error) {
		return key, nil
	}
	ctx := context.Background()
	if _, err := c.GetOrLookup(ctx, "hot", lookup); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.GetOrLookup(ctx, "hot", lookup); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLookupCacheParallel(b *testing.B) {
	// Mixed read-heavy workload: roughly what corroboration lookups see
	// once the hot queries are warm.
	c := NewLookupCache(Options{Name: "bench", Capacity: 1024, Policy: LRUEvictionPolicyType})
	fillCache(c, 1024)

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i%10 < 7 {
				c.Get("key-" + strconv.Itoa(i%1024))
			} else {
				c.Put("extra-"+strconv.Itoa(i), i)
			}
			i++
		}
	})
}
