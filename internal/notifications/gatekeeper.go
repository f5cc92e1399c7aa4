package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sajilopatro/patro-data/internal/flagstore"
)

// PermissionState mirrors the platform-reported notification permission.
type PermissionState string

const (
	PermissionDefault PermissionState = "default" // never decided
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

// PermissionAPI is the platform capability the gatekeeper drives.
// Request blocks until the platform decides (or fails).
type PermissionAPI interface {
	Current(ctx context.Context) (PermissionState, error)
	Request(ctx context.Context) (PermissionState, error)
}

// Gatekeeper decides whether the user/operator may be asked for
// notification permission. Granted and denied are terminal for the
// process; a default state may be asked again once per cooldown,
// tracked via a persisted last-asked timestamp.
type Gatekeeper struct {
	api      PermissionAPI
	store    flagstore.Store
	logger   *slog.Logger
	cooldown time.Duration
	now      func() time.Time

	mu       sync.Mutex
	state    PermissionState
	inflight bool
	waiters  []chan PermissionState
}

// NewGatekeeper reads the current platform permission and builds a
// gatekeeper around it. A probe failure is treated as default: the
// feature stays available, the next ask will retry the platform.
func NewGatekeeper(ctx context.Context, api PermissionAPI, store flagstore.Store, logger *slog.Logger) *Gatekeeper {
	if logger == nil {
		logger = slog.Default()
	}
	state, err := api.Current(ctx)
	if err != nil {
		logger.Warn("Permission probe failed, assuming default", "error", err)
		state = PermissionDefault
	}
	return &Gatekeeper{
		api:      api,
		store:    store,
		logger:   logger,
		cooldown: DefaultCooldown,
		now:      time.Now,
		state:    state,
	}
}

// State returns the last observed permission state.
func (g *Gatekeeper) State() PermissionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Askable reports whether RequestPermission would actually prompt.
// Terminal states are never askable. A default state is askable when no
// last-asked timestamp is stored, or when the cooldown has elapsed (in
// which case the stale timestamp is cleared). An unreadable store counts
// as never asked.
func (g *Gatekeeper) Askable(ctx context.Context) bool {
	g.mu.Lock()
	state := g.state
	g.mu.Unlock()
	if state != PermissionDefault {
		return false
	}

	raw, ok := g.store.Get(ctx, flagstore.LastAskedKey)
	if !ok {
		return true
	}
	askedAt, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		g.logger.Warn("Unparseable last-asked timestamp, treating as never asked", "value", raw)
		g.store.Remove(ctx, flagstore.LastAskedKey)
		return true
	}
	if g.now().Sub(askedAt) >= g.cooldown {
		g.store.Remove(ctx, flagstore.LastAskedKey)
		return true
	}
	return false
}

// RequestPermission triggers the platform prompt when askable, records
// the ask timestamp regardless of the answer, and returns the resulting
// state. When not askable (terminal state, cooling down, or a request is
// already outstanding) it returns the current state unchanged. A platform
// failure leaves the state and the timestamp untouched, so a transient
// error does not start a cooldown penalty.
func (g *Gatekeeper) RequestPermission(ctx context.Context) PermissionState {
	if !g.Askable(ctx) {
		return g.State()
	}

	g.mu.Lock()
	if g.inflight {
		// Join the outstanding request instead of double-prompting.
		ch := make(chan PermissionState, 1)
		g.waiters = append(g.waiters, ch)
		g.mu.Unlock()
		select {
		case state := <-ch:
			return state
		case <-ctx.Done():
			return g.State()
		}
	}
	g.inflight = true
	g.mu.Unlock()

	state, err := g.api.Request(ctx)

	g.mu.Lock()
	g.inflight = false
	if err != nil {
		g.logger.Warn("Permission request failed, state unchanged", "error", err)
		state = g.state
	} else {
		g.state = state
		g.store.Set(ctx, flagstore.LastAskedKey, g.now().UTC().Format(time.RFC3339))
		g.logger.Info("Permission requested", "state", state)
	}
	waiters := g.waiters
	g.waiters = nil
	g.mu.Unlock()

	for _, ch := range waiters {
		ch <- state
	}
	return state
}
