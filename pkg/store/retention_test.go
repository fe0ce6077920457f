package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credgate/credgate/pkg/config"
)

func TestStartRetentionDisabled(t *testing.T) {
	ms := NewMemoryStore(config.MemoryStoreConfig{})
	sweeper, err := StartRetention(ms, config.RetentionConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, sweeper)
}

// TestStartRetentionNonPurger checks that backends without purge support
// do not get a sweep scheduled.
func TestStartRetentionNonPurger(t *testing.T) {
	sweeper, err := StartRetention(NewDisabledStore(), config.RetentionConfig{Enabled: true})
	require.NoError(t, err)
	assert.Nil(t, sweeper)
}

func TestStartRetentionInvalidSchedule(t *testing.T) {
	ms := NewMemoryStore(config.MemoryStoreConfig{})
	_, err := StartRetention(ms, config.RetentionConfig{Enabled: true, Schedule: "not a schedule"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid retention schedule")
}

func TestStartRetentionAndStop(t *testing.T) {
	ms := NewMemoryStore(config.MemoryStoreConfig{})
	sweeper, err := StartRetention(ms, config.RetentionConfig{Enabled: true, Schedule: "@every 1h"})
	require.NoError(t, err)
	require.NotNil(t, sweeper)
	sweeper.Stop()

	// Stopping a nil sweeper must be safe for callers that skipped retention.
	var none *RetentionSweeper
	none.Stop()
}

func TestRetentionSweepRemovesOldVerdicts(t *testing.T) {
	ms := NewMemoryStore(config.MemoryStoreConfig{})
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, ms.Record(ctx, sampleVerdict("stale", now.Add(-40*24*time.Hour))))
	require.NoError(t, ms.Record(ctx, sampleVerdict("fresh", now)))

	sweeper := &RetentionSweeper{store: ms, maxAge: 30 * 24 * time.Hour}
	sweeper.sweep()

	count, err := ms.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = ms.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ms.Get(ctx, "fresh")
	assert.NoError(t, err)
}
