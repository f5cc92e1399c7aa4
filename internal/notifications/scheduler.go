package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sajilopatro/patro-data/internal/flagstore"
	"github.com/sajilopatro/patro-data/internal/holiday"
)

// Scheduler arranges at most one reminder per (date, eventName) pair.
// It consults the gatekeeper before acting, checks the flag store before
// firing, and marks the flag after every delivery attempt, failed ones
// included.
//
// Future windows are held as cancellable timers; Stop tears them down.
// Idempotency lives in the flag store, not in timer bookkeeping, so
// re-scans from cron or a restart are safe.
type Scheduler struct {
	store    flagstore.Store
	notifier Notifier
	gate     *Gatekeeper // optional; nil means no permission gating
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewScheduler builds a scheduler whose clock reads in loc, the zone the
// reminder windows are defined in. gate may be nil; a nil loc falls back
// to the host zone.
func NewScheduler(store flagstore.Store, notifier Notifier, gate *Gatekeeper, logger *slog.Logger, loc *time.Location) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		store:    store,
		notifier: notifier,
		gate:     gate,
		logger:   logger,
		now:      func() time.Time { return time.Now().In(loc) },
		timers:   make(map[string]*time.Timer),
	}
}

// Evaluate runs one pass over the finder's output: fires same-day
// reminders immediately and arms timers for future T-2/T-1 windows.
// Events are independent; an error on one never aborts the rest.
func (s *Scheduler) Evaluate(ctx context.Context, events []holiday.Upcoming) ScanResult {
	start := s.now()
	var result ScanResult
	result.EventsSeen = len(events)

	if s.gate != nil && s.gate.State() != PermissionGranted {
		result.GateBlocked = len(events)
		result.Duration = s.now().Sub(start)
		s.logger.Info("Reminder pass gated", "state", s.gate.State(), "events", len(events))
		return result
	}

	for _, ev := range events {
		if ev.Name == "" || ev.Date.IsZero() {
			result.Errors = append(result.Errors, "malformed event skipped")
			continue
		}

		key := flagstore.FiredKey(ev.Date, ev.Name)
		if _, fired := s.store.Get(ctx, key); fired {
			result.AlreadyFired++
			continue
		}

		plan, ok := PlanFor(ev.Date, s.now())
		if !ok {
			result.SkippedPast++
			continue
		}

		if plan.Immediate {
			s.fire(ctx, ev, plan.Stage, key)
			result.FiredNow++
			continue
		}

		s.arm(ev, plan, key)
		result.TimersSet++
	}

	result.Duration = s.now().Sub(start)
	return result
}

// arm holds a timer until the plan's fire time. An existing timer for
// the same key is left in place; the fired flag makes a stray duplicate
// harmless.
func (s *Scheduler) arm(ev holiday.Upcoming, plan Plan, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.timers[key]; exists {
		return
	}

	delay := plan.FireAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if _, fired := s.store.Get(ctx, key); fired {
			return
		}
		s.fire(ctx, ev, plan.Stage, key)
	})
	s.logger.Info("Reminder armed",
		"event", ev.Name, "date", ev.Date.Format("2006-01-02"),
		"stage", plan.Stage.String(), "fire_at", plan.FireAt)
}

// fire delivers one reminder and marks the key fired. The mark happens
// even when delivery fails so a refused notification is not retried on
// every scan.
func (s *Scheduler) fire(ctx context.Context, ev holiday.Upcoming, stage Stage, key string) {
	title, body := buildMessage(ev, stage)

	err := s.notifier.Send(ctx, title, body)
	s.store.Set(ctx, key, s.now().UTC().Format(time.RFC3339))

	if err != nil {
		s.logger.Warn("Reminder delivery failed, marked fired anyway",
			"event", ev.Name, "stage", stage.String(), "error", err)
		return
	}
	s.logger.Info("Reminder fired",
		"event", ev.Name, "date", ev.Date.Format("2006-01-02"), "stage", stage.String())
}

// PendingTimers reports how many future reminders are armed.
func (s *Scheduler) PendingTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every armed timer. Fired flags are not rolled back;
// cancellation stops pending work, it does not undo history.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}
