package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gitshopapp/trackpage/internal/logging"
)

// Sweeper evicts expired entries from a volatile store.
type Sweeper interface {
	Sweep() int
}

type JanitorConfig struct {
	Store         DurablePageStore
	Sweeper       Sweeper
	Retention     time.Duration
	PruneInterval time.Duration
	SweepInterval time.Duration
	Now           func() time.Time
	Logger        *slog.Logger
}

// Janitor prunes old saved pages and sweeps the in-memory cache on fixed
// intervals. Either job is skipped when its store is absent.
type Janitor struct {
	store         DurablePageStore
	sweeper       Sweeper
	retention     time.Duration
	pruneInterval time.Duration
	sweepInterval time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

func NewJanitor(cfg JanitorConfig) (*Janitor, error) {
	if cfg.Store != nil && (cfg.Retention <= 0 || cfg.PruneInterval <= 0) {
		return nil, fmt.Errorf("retention and prune interval must be positive")
	}
	if cfg.Sweeper != nil && cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Janitor{
		store:         cfg.Store,
		sweeper:       cfg.Sweeper,
		retention:     cfg.Retention,
		pruneInterval: cfg.PruneInterval,
		sweepInterval: cfg.SweepInterval,
		now:           now,
		logger:        logging.FromContext(context.Background(), cfg.Logger),
	}, nil
}

// Prune deletes saved pages that have not been updated within the retention
// period.
func (j *Janitor) Prune(ctx context.Context) (int64, error) {
	if j.store == nil {
		return 0, nil
	}
	cutoff := j.now().Add(-j.retention)
	removed, err := j.store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		j.logger.Info("pruned saved pages", "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}

func (j *Janitor) Sweep() int {
	if j.sweeper == nil {
		return 0
	}
	removed := j.sweeper.Sweep()
	if removed > 0 {
		j.logger.Debug("swept expired pages", "removed", removed)
	}
	return removed
}

// Run blocks until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	var pruneTick, sweepTick <-chan time.Time

	if j.store != nil {
		ticker := time.NewTicker(j.pruneInterval)
		defer ticker.Stop()
		pruneTick = ticker.C
		j.prune(ctx)
	}
	if j.sweeper != nil {
		ticker := time.NewTicker(j.sweepInterval)
		defer ticker.Stop()
		sweepTick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-pruneTick:
			j.prune(ctx)
		case <-sweepTick:
			j.Sweep()
		}
	}
}

func (j *Janitor) prune(ctx context.Context) {
	if _, err := j.Prune(ctx); err != nil && ctx.Err() == nil {
		j.logger.Error("failed to prune saved pages", "error", err)
	}
}
