package store

import (
	"context"
	"sync"
	"time"

	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/observability/metrics"
	"github.com/credgate/credgate/pkg/verdict"
)

// MemoryStore is an in-memory implementation of VerdictStore. Records are
// held in arrival order; once maxRecords is reached the oldest is dropped.
type MemoryStore struct {
	mu         sync.RWMutex
	records    []*verdict.Verdict
	byID       map[string]*verdict.Verdict
	maxRecords int
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore(cfg config.MemoryStoreConfig) *MemoryStore {
	maxRecords := cfg.MaxRecords
	if maxRecords <= 0 {
		maxRecords = config.DefaultMemoryMaxRecords
	}
	return &MemoryStore{
		byID:       make(map[string]*verdict.Verdict),
		maxRecords: maxRecords,
	}
}

func (m *MemoryStore) IsEnabled() bool { return true }

func (m *MemoryStore) CheckConnection(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	m.byID = nil
	return nil
}

func (m *MemoryStore) Record(ctx context.Context, v *verdict.Verdict) error {
	if v == nil || v.ID == "" {
		return ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.records) >= m.maxRecords {
		oldest := m.records[0]
		m.records = m.records[1:]
		delete(m.byID, oldest.ID)
	}
	stored := *v
	m.records = append(m.records, &stored)
	m.byID[stored.ID] = &stored
	metrics.RecordStoreOperation(BackendMemory, "record", nil)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*verdict.Verdict, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, exists := m.byID[id]
	if !exists {
		metrics.RecordStoreOperation(BackendMemory, "get", ErrNotFound)
		return nil, ErrNotFound
	}
	result := *v
	metrics.RecordStoreOperation(BackendMemory, "get", nil)
	return &result, nil
}

func (m *MemoryStore) List(ctx context.Context, opts ListOptions) ([]*verdict.Verdict, error) {
	limit := clampLimit(opts.Limit)
	offset := clampOffset(opts.Offset)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*verdict.Verdict, 0, limit)
	for i := len(m.records) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		result := *m.records[i]
		out = append(out, &result)
	}
	metrics.RecordStoreOperation(BackendMemory, "list", nil)
	return out, nil
}

func (m *MemoryStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

// PurgeOlderThan removes verdicts created before the cutoff.
func (m *MemoryStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.records[:0]
	var removed int64
	for _, v := range m.records {
		if v.CreatedAt.Before(cutoff) {
			delete(m.byID, v.ID)
			removed++
			continue
		}
		kept = append(kept, v)
	}
	m.records = kept
	metrics.RecordStoreOperation(BackendMemory, "purge", nil)
	return removed, nil
}
