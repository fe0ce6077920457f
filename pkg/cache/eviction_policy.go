package cache

import "strings"

// Eviction policy names accepted in configuration.
const (
	LRUEvictionPolicyType  = "lru"
	LFUEvictionPolicyType  = "lfu"
	FIFOEvictionPolicyType = "fifo"
)

// EvictionPolicy selects which entry to drop when the cache is full.
type EvictionPolicy interface {
	SelectVictim(entries []*Entry) int
}

// NewEvictionPolicy returns the policy for the given name; unknown or empty
// names fall back to LRU.
func NewEvictionPolicy(name string) EvictionPolicy {
	switch strings.ToLower(name) {
	case LFUEvictionPolicyType:
		return &LFUPolicy{}
	case FIFOEvictionPolicyType:
		return &FIFOPolicy{}
	default:
		return &LRUPolicy{}
	}
}

// FIFOPolicy evicts the earliest-stored entry.
type FIFOPolicy struct{}

func (p *FIFOPolicy) SelectVictim(entries []*Entry) int {
	if len(entries) == 0 {
		return -1
	}

	oldestIdx := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].StoredAt.Before(entries[oldestIdx].StoredAt) {
			oldestIdx = i
		}
	}
	return oldestIdx
}

// LRUPolicy evicts the least recently accessed entry.
type LRUPolicy struct{}

func (p *LRUPolicy) SelectVictim(entries []*Entry) int {
	if len(entries) == 0 {
		return -1
	}

	oldestIdx := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].LastAccessAt.Before(entries[oldestIdx].LastAccessAt) {
			oldestIdx = i
		}
	}
	return oldestIdx
}

// LFUPolicy evicts the least frequently hit entry.
type LFUPolicy struct{}

func (p *LFUPolicy) SelectVictim(entries []*Entry) int {
	if len(entries) == 0 {
		return -1
	}

	victimIdx := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].HitCount < entries[victimIdx].HitCount {
			victimIdx = i
		} else if entries[i].HitCount == entries[victimIdx].HitCount {
			// Use LRU as tiebreaker to avoid random selection
			if entries[i].LastAccessAt.Before(entries[victimIdx].LastAccessAt) {
				victimIdx = i
			}
		}
	}
	return victimIdx
}
