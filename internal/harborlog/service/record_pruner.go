package service

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harborlog/server/internal/harborlog/store"
)

// RecordPruner periodically deletes sign-in records older than the retention
// period. A retention of 0 disables pruning entirely.
type RecordPruner struct {
	store     store.RecordPruner
	retention time.Duration
	interval  time.Duration
	logger    *log.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

// PrunerConfig holds the parameters for NewRecordPruner.
type PrunerConfig struct {
	// RetentionDays is how many days of sign-in history to keep.
	// 0 keeps everything and the pruner does not start.
	RetentionDays int

	// IntervalHours is how often the pruner runs. Defaults to 6.
	IntervalHours int
}

// NewRecordPruner creates a pruner but does not start it.
func NewRecordPruner(s store.RecordPruner, cfg PrunerConfig, logger *log.Logger) *RecordPruner {
	interval := time.Duration(cfg.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	return &RecordPruner{
		store:     s,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		interval:  interval,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start runs an immediate prune, then repeats on the interval until ctx is
// cancelled or Stop is called.
func (p *RecordPruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		p.logger.Info("record pruner disabled", "retention_days", 0)
		close(p.done)
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)

	go p.loop(ctx)

	p.logger.Info("record pruner started",
		"retention_days", int(p.retention.Hours()/24),
		"interval", p.interval)
}

// Stop signals the pruner to exit and waits for it to finish.
func (p *RecordPruner) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

func (p *RecordPruner) loop(ctx context.Context) {
	defer close(p.done)

	p.PruneOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PruneOnce(ctx)
		}
	}
}

// PruneOnce deletes everything older than now minus the retention period and
// returns the number of deleted records.
func (p *RecordPruner) PruneOnce(ctx context.Context) int64 {
	if p.retention <= 0 {
		return 0
	}
	cutoff := time.Now().UTC().Add(-p.retention)
	deleted, err := p.store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("record prune failed", "err", err)
		return 0
	}
	if deleted > 0 {
		p.logger.Info("record prune", "deleted", deleted, "cutoff", cutoff.Format(time.RFC3339))
	}
	return deleted
}
