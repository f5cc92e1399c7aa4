// Package maintenance runs periodic background housekeeping as Go tickers.
// The reminder core never deletes its own flags; this package sweeps
// fired-reminder flags once their event is long past so the store does
// not grow without bound.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/sajilopatro/patro-data/internal/flagstore"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	SweepInterval time.Duration // how often stale flags are swept
	Retention     time.Duration // fired flags older than this are removed
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig(retentionDays int) Config {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return Config{
		SweepInterval: 12 * time.Hour,
		Retention:     time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Start runs the maintenance loop. Blocks until ctx is cancelled.
// Intended to be called with `go`. Stores that cannot enumerate their
// flags (no Lister) are left alone.
func Start(ctx context.Context, store flagstore.Store, cfg Config, logger *slog.Logger) {
	lister, ok := store.(flagstore.Lister)
	if !ok || cfg.SweepInterval <= 0 {
		logger.Info("Flag sweep disabled")
		return
	}

	logger.Info("Flag sweep started",
		"interval", cfg.SweepInterval, "retention", cfg.Retention)
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := sweep(ctx, store, lister, cfg.Retention, logger)
			if removed > 0 {
				logger.Info("Stale flags removed", "count", removed)
			}
		case <-ctx.Done():
			logger.Info("Flag sweep stopped")
			return
		}
	}
}

// sweep removes fired-reminder flags whose fire timestamp is older than
// the retention window. Unparseable values are removed too; they can
// only have come from a corrupt write.
func sweep(ctx context.Context, store flagstore.Store, lister flagstore.Lister, retention time.Duration, logger *slog.Logger) int {
	cutoff := time.Now().Add(-retention)
	removed := 0

	for key, value := range lister.List(ctx, flagstore.FiredPrefix()) {
		firedAt, err := time.Parse(time.RFC3339, value)
		if err != nil {
			logger.Warn("Removing unparseable fired flag", "key", key, "value", value)
			store.Remove(ctx, key)
			removed++
			continue
		}
		if firedAt.Before(cutoff) {
			store.Remove(ctx, key)
			removed++
		}
	}
	return removed
}
