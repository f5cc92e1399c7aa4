// Package notifications turns upcoming holiday days into at-most-once
// reminders.
//
// Pipeline: finder output → window plan (T-2 evening, T-1 morning,
// same-day fallback) → permission gate → fire → persist fired flag.
// The fired flag is keyed by (date, eventName), so re-scans after a
// restart are idempotent. Two concurrent scan passes can in theory race
// between the flag check and the flag set; a rare duplicate reminder is
// accepted rather than paying for a transactional store.
package notifications

import (
	"fmt"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// Reminder hours, local time on the anchored day.
	twoDayHour   = 20 // T-2 days, 20:00
	oneDayHour   = 10 // T-1 day, 10:00
	fallbackHour = 10 // event day, 10:00

	// DefaultCooldown is the minimum interval between permission asks.
	DefaultCooldown = 7 * 24 * time.Hour
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Stage identifies which reminder window a notification belongs to.
type Stage int

const (
	StageNone Stage = iota
	StageTwoDays
	StageOneDay
	StageFallback
)

func (s Stage) String() string {
	switch s {
	case StageTwoDays:
		return "2 days before"
	case StageOneDay:
		return "1 day before"
	case StageFallback:
		return "same day"
	default:
		return "none"
	}
}

// ScanResult tracks the outcome of one scheduler evaluation pass.
type ScanResult struct {
	EventsSeen   int
	AlreadyFired int
	FiredNow     int
	TimersSet    int
	SkippedPast  int
	GateBlocked  int
	Errors       []string
	Duration     time.Duration
}

// Summary returns a human-readable summary.
func (r *ScanResult) Summary() string {
	s := fmt.Sprintf("seen=%d fired=%d timers=%d dup=%d past=%d gated=%d dur=%s",
		r.EventsSeen, r.FiredNow, r.TimersSet, r.AlreadyFired,
		r.SkippedPast, r.GateBlocked, r.Duration.Round(time.Millisecond))
	if len(r.Errors) > 0 {
		s += " errors=" + strings.Join(r.Errors, "; ")
	}
	return s
}
