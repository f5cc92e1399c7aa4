package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sajilopatro/patro-data/internal/holiday"
)

// Rescan schedule: just past midnight to pick up the new day, and at the
// reminder hours themselves so same-day fallbacks fire even if the
// process slept through its timers (suspend, container pause).
var rescanSpecs = []string{
	"5 0 * * *",
	"0 10 * * *",
	"0 20 * * *",
}

// FindFunc produces the current window of notifiable days.
type FindFunc func(ctx context.Context) []holiday.Upcoming

// StartWorker runs the reminder engine: one scan at startup, then cron
// rescans. Blocks until ctx is cancelled, then cancels all armed timers.
// Intended to be called with `go`.
func StartWorker(ctx context.Context, find FindFunc, sched *Scheduler, loc *time.Location, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}

	scan := func() {
		// Ask for permission once per cooldown while still undecided.
		if sched.gate != nil && sched.gate.State() == PermissionDefault && sched.gate.Askable(ctx) {
			sched.gate.RequestPermission(ctx)
		}

		result := sched.Evaluate(ctx, find(ctx))
		logger.Info("Reminder scan complete", "summary", result.Summary())
	}

	c := cron.New(cron.WithLocation(loc))
	for _, spec := range rescanSpecs {
		if _, err := c.AddFunc(spec, scan); err != nil {
			logger.Error("Invalid rescan spec", "spec", spec, "error", err)
		}
	}
	c.Start()
	logger.Info("Reminder worker started", "rescans", rescanSpecs)

	scan()

	<-ctx.Done()
	cronCtx := c.Stop()
	<-cronCtx.Done()
	sched.Stop()
	logger.Info("Reminder worker stopped")
}
