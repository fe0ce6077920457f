// Package store persists emitted verdicts for later audit and review.
// It supports pluggable backends including memory, Redis, and MySQL.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/verdict"
)

// Backends a store can be built on.
const (
	// BackendMemory is the in-memory store backend.
	BackendMemory = "memory"

	// BackendRedis is the Redis store backend.
	BackendRedis = "redis"

	// BackendMySQL is the MySQL store backend.
	BackendMySQL = "mysql"
)

// List limits shared by all backends.
const (
	// DefaultListLimit is the default limit for list operations.
	DefaultListLimit = 20

	// MaxListLimit is the maximum limit for list operations.
	MaxListLimit = 100
)

// VerdictStore is the audit log of emitted verdicts.
// Implementations must be thread-safe.
type VerdictStore interface {
	// Record stores a new verdict. A disabled store accepts and discards it.
	Record(ctx context.Context, v *verdict.Verdict) error

	// Get retrieves a verdict by ID.
	// Returns ErrNotFound if the verdict doesn't exist.
	Get(ctx context.Context, id string) (*verdict.Verdict, error)

	// List returns stored verdicts, newest first.
	List(ctx context.Context, opts ListOptions) ([]*verdict.Verdict, error)

	// Count returns the number of stored verdicts.
	Count(ctx context.Context) (int64, error)

	// Close releases resources held by the store.
	Close() error

	// CheckConnection verifies the store connection is healthy.
	CheckConnection(ctx context.Context) error

	// IsEnabled returns whether the store is enabled.
	IsEnabled() bool
}

// Purger is implemented by backends that support retention sweeps.
// The Redis backend expires records through TTLs instead.
type Purger interface {
	// PurgeOlderThan removes verdicts created before the cutoff and
	// returns how many were removed.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ListOptions contains pagination options for List.
type ListOptions struct {
	// Limit is the maximum number of verdicts to return.
	// Zero means DefaultListLimit; values above MaxListLimit are clamped.
	Limit int

	// Offset is the number of newest verdicts to skip.
	Offset int
}

// NewStore creates a store based on the configuration. A disabled or
// unconfigured store still satisfies VerdictStore so callers never need
// a nil check.
func NewStore(cfg config.StoreConfig) (VerdictStore, error) {
	cfg, err := resolveConfig(cfg)
	if err != nil {
		return nil, err
	}

	if !cfg.Enabled || cfg.Backend == "" {
		return NewDisabledStore(), nil
	}

	switch strings.ToLower(cfg.Backend) {
	case BackendMemory:
		return NewMemoryStore(cfg.Memory), nil
	case BackendRedis:
		return NewRedisStore(cfg.Redis)
	case BackendMySQL:
		return NewMySQLStore(cfg.MySQL)
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.Backend)
	}
}

// NewDisabledStore returns a store that accepts nothing and reads nothing.
func NewDisabledStore() VerdictStore {
	return disabledStore{}
}

// disabledStore drops writes and refuses reads.
type disabledStore struct{}

func (disabledStore) Record(ctx context.Context, v *verdict.Verdict) error { return nil }

func (disabledStore) Get(ctx context.Context, id string) (*verdict.Verdict, error) {
	return nil, ErrStoreDisabled
}

func (disabledStore) List(ctx context.Context, opts ListOptions) ([]*verdict.Verdict, error) {
	return nil, ErrStoreDisabled
}

func (disabledStore) Count(ctx context.Context) (int64, error) { return 0, ErrStoreDisabled }

func (disabledStore) Close() error { return nil }

func (disabledStore) CheckConnection(ctx context.Context) error { return ErrStoreDisabled }

func (disabledStore) IsEnabled() bool { return false }

// clampLimit enforces consistent limit constraints across all backends.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// clampOffset floors negative offsets at zero.
func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
