// Package flagstore persists small key-value flags: "reminder already
// fired", "permission last asked". All implementations are failure
// tolerant — a broken backend degrades to reads reporting absent and
// writes becoming logged no-ops, so callers fall back to their most
// permissive safe behavior instead of blocking.
package flagstore

import (
	"context"
	"fmt"
	"time"
)

// Store is the shared flag persistence contract. Implementations never
// return errors to callers; failures are logged and swallowed.
type Store interface {
	// Get returns the stored value for key, or ok=false when absent or
	// when the backend is unavailable.
	Get(ctx context.Context, key string) (value string, ok bool)

	// Set stores key=value. A no-op on backend failure.
	Set(ctx context.Context, key, value string)

	// Remove deletes key. A no-op on backend failure or absence.
	Remove(ctx context.Context, key string)
}

// Lister is an optional extension used by maintenance sweeps.
type Lister interface {
	// List returns all stored flags whose key starts with prefix.
	List(ctx context.Context, prefix string) map[string]string
}

// --------------------------------------------------------------------------
// Key helpers — single source of truth for flag key shapes
// --------------------------------------------------------------------------

const (
	firedPrefix = "reminder:fired:"

	// LastAskedKey stores the RFC3339 instant of the last permission ask.
	LastAskedKey = "permission:last_asked_at"
)

// FiredKey builds the de-duplication key for one (date, eventName) pair.
func FiredKey(date time.Time, eventName string) string {
	return fmt.Sprintf("%s%s:%s", firedPrefix, date.Format("2006-01-02"), eventName)
}

// FiredPrefix is the key namespace holding fired-reminder flags.
func FiredPrefix() string { return firedPrefix }
