package store

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/credgate/credgate/pkg/config"
	"github.com/credgate/credgate/pkg/observability/logging"
)

// purgeTimeout bounds a single retention sweep.
const purgeTimeout = time.Minute

// RetentionSweeper periodically removes verdicts older than the retention
// window from backends that support purging.
type RetentionSweeper struct {
	store  Purger
	maxAge time.Duration
	cron   *cron.Cron
}

// StartRetention schedules retention sweeps for the given store. It returns
// nil when retention is disabled or the backend handles expiry itself.
func StartRetention(st VerdictStore, cfg config.RetentionConfig) (*RetentionSweeper, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	purger, ok := st.(Purger)
	if !ok {
		logging.Debugf("store: backend expires records itself, retention sweep not scheduled")
		return nil, nil
	}

	days := cfg.Days
	if days <= 0 {
		days = config.DefaultRetentionDays
	}
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = config.DefaultRetentionSchedule
	}

	sweeper := &RetentionSweeper{
		store:  purger,
		maxAge: time.Duration(days) * 24 * time.Hour,
		cron:   cron.New(),
	}

	if _, err := sweeper.cron.AddFunc(schedule, sweeper.sweep); err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", schedule, err)
	}
	sweeper.cron.Start()

	logging.Infof("store: retention sweep scheduled (%s, max age %d days)", schedule, days)

	return sweeper, nil
}

// Stop halts the sweep schedule. A nil sweeper is a no-op.
func (r *RetentionSweeper) Stop() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Stop()
}

func (r *RetentionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	cutoff := time.Now().Add(-r.maxAge)
	removed, err := r.store.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		logging.Warnf("store: retention sweep failed: %v", err)
		return
	}
	if removed > 0 {
		logging.Infof("store: retention sweep removed %d verdicts older than %s", removed, cutoff.Format(time.RFC3339))
	}
}
