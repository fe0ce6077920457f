package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/observability/logging"
	"github.com/credgate/credgate/pkg/observability/metrics"
	"github.com/credgate/credgate/pkg/verdict"
)

// RedisStore implements VerdictStore using Redis as the backend. Verdicts
// are stored as JSON values with a sorted-set index keyed by emit time,
// so listing newest-first is a single range read. Retention is handled by
// Redis itself through per-key TTLs.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// verdictKeySuffix prefixes value keys.
// Combined with key_prefix (default "credgate:"): credgate:verdict:<id>
const verdictKeySuffix = "verdict:"

// indexKeySuffix names the sorted-set index.
// Combined with key_prefix (default "credgate:"): credgate:verdicts
const indexKeySuffix = "verdicts"

// NewRedisStore creates a Redis-backed store and verifies connectivity.
func NewRedisStore(cfg config.RedisStoreConfig) (*RedisStore, error) {
	if err := validateRedisConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid redis store config: %w", err)
	}

	var ttl time.Duration
	if cfg.TTLHours > 0 {
		ttl = time.Duration(cfg.TTLHours) * time.Hour
	}

	var password string
	if cfg.PasswordEnv != "" {
		password = os.Getenv(cfg.PasswordEnv)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: password,
		DB:       cfg.DB,
	})

	store := &RedisStore{
		client:    client,
		keyPrefix: normalizeKeyPrefix(cfg.KeyPrefix),
		ttl:       ttl,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := store.CheckConnection(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logging.Infof("redis store: connected (address=%s, db=%d, key_prefix=%s, ttl=%s)",
		cfg.Address, cfg.DB, store.keyPrefix, ttl)

	return store, nil
}

func validateRedisConfig(cfg config.RedisStoreConfig) error {
	if cfg.Address == "" {
		return fmt.Errorf("address is required")
	}
	if cfg.DB < 0 || cfg.DB > 15 {
		return fmt.Errorf("invalid DB number %d (must be 0-15)", cfg.DB)
	}
	return nil
}

func normalizeKeyPrefix(prefix string) string {
	if prefix == "" {
		prefix = config.DefaultRedisKeyPrefix
	}
	if !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return prefix
}

func (s *RedisStore) verdictKey(id string) string {
	return s.keyPrefix + verdictKeySuffix + id
}

func (s *RedisStore) indexKey() string {
	return s.keyPrefix + indexKeySuffix
}

func (s *RedisStore) IsEnabled() bool { return true }

func (s *RedisStore) CheckConnection(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.client != nil {
		logging.Infof("redis store: closing connection")
		return s.client.Close()
	}
	return nil
}

func (s *RedisStore) Record(ctx context.Context, v *verdict.Verdict) error {
	if v == nil || v.ID == "" {
		return ErrInvalidInput
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize verdict: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.verdictKey(v.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), redis.Z{
		Score:  float64(v.CreatedAt.UnixMilli()),
		Member: v.ID,
	})
	if s.ttl > 0 {
		// Value keys expire on their own; the index is trimmed here so it
		// does not accumulate members whose values are gone.
		cutoff := time.Now().Add(-s.ttl).UnixMilli()
		pipe.ZRemRangeByScore(ctx, s.indexKey(), "-inf", strconv.FormatInt(cutoff, 10))
	}
	_, err = pipe.Exec(ctx)
	metrics.RecordStoreOperation(BackendRedis, "record", err)
	if err != nil {
		return fmt.Errorf("failed to store verdict in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*verdict.Verdict, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	data, err := s.client.Get(ctx, s.verdictKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordStoreOperation(BackendRedis, "get", ErrNotFound)
			return nil, ErrNotFound
		}
		metrics.RecordStoreOperation(BackendRedis, "get", err)
		return nil, fmt.Errorf("failed to get verdict from redis: %w", err)
	}

	var v verdict.Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to deserialize verdict: %w", err)
	}

	metrics.RecordStoreOperation(BackendRedis, "get", nil)
	return &v, nil
}

func (s *RedisStore) List(ctx context.Context, opts ListOptions) ([]*verdict.Verdict, error) {
	limit := clampLimit(opts.Limit)
	offset := clampOffset(opts.Offset)

	start := int64(offset)
	stop := int64(offset + limit - 1)
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), start, stop).Result()
	if err != nil {
		metrics.RecordStoreOperation(BackendRedis, "list", err)
		return nil, fmt.Errorf("failed to read verdict index from redis: %w", err)
	}
	if len(ids) == 0 {
		metrics.RecordStoreOperation(BackendRedis, "list", nil)
		return []*verdict.Verdict{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, s.verdictKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		metrics.RecordStoreOperation(BackendRedis, "list", err)
		return nil, fmt.Errorf("failed to fetch verdicts from redis: %w", err)
	}

	out := make([]*verdict.Verdict, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// The value expired after the index was read.
				logging.Debugf("redis store: verdict %s missing from index read", ids[i])
				continue
			}
			logging.Warnf("redis store: failed to fetch verdict %s: %v", ids[i], err)
			continue
		}
		var v verdict.Verdict
		if err := json.Unmarshal(data, &v); err != nil {
			logging.Warnf("redis store: failed to parse verdict %s: %v", ids[i], err)
			continue
		}
		out = append(out, &v)
	}

	metrics.RecordStoreOperation(BackendRedis, "list", nil)
	return out, nil
}

func (s *RedisStore) Count(ctx context.Context) (int64, error) {
	n, err := s.client.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		metrics.RecordStoreOperation(BackendRedis, "count", err)
		return 0, fmt.Errorf("failed to count verdicts in redis: %w", err)
	}
	return n, nil
}
