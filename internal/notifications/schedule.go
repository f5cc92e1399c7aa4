package notifications

import (
	"fmt"
	"time"

	"github.com/sajilopatro/patro-data/internal/holiday"
)

// Plan is the single reminder chosen for one event at evaluation time.
type Plan struct {
	Stage     Stage
	FireAt    time.Time
	Immediate bool // fire during this pass instead of holding a timer
}

// PlanFor picks at most one reminder window for an event dated eventDate
// (midnight-anchored), evaluated at now. Windows, relative to event day D:
//
//	T2 = D-2 at 20:00   — upcoming, fire at T2
//	T1 = D-1 at 10:00   — fire at T1 once T2 has passed; the rest of
//	                      D-1 after T1 catches up immediately
//	F  = D   at 10:00   — same-day catch-up, fires immediately
//
// Windows are anchored in the event date's own zone, so now may come
// from a host clock in any zone without shifting the reminder hours.
//
// ok is false when the event is already past or no window applies yet.
func PlanFor(eventDate, now time.Time) (Plan, bool) {
	loc := eventDate.Location()
	day := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, loc)

	t2 := day.AddDate(0, 0, -2).Add(twoDayHour * time.Hour)
	t1 := day.AddDate(0, 0, -1).Add(oneDayHour * time.Hour)
	fb := day.Add(fallbackHour * time.Hour)

	switch {
	case now.Before(t2):
		return Plan{Stage: StageTwoDays, FireAt: t2}, true
	case now.Before(t1):
		return Plan{Stage: StageOneDay, FireAt: t1}, true
	case now.Before(day):
		// Still on D-1 but past T1: the window was missed, catch up now.
		return Plan{Stage: StageOneDay, FireAt: now, Immediate: true}, true
	case sameDay(now.In(loc), day) && !now.Before(fb):
		return Plan{Stage: StageFallback, FireAt: now, Immediate: true}, true
	default:
		return Plan{}, false
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// buildMessage renders the reminder body for one event and stage.
func buildMessage(ev holiday.Upcoming, stage Stage) (title, body string) {
	title = "Upcoming holiday"
	if ev.IsRestDay && !ev.IsHoliday {
		title = "Rest day"
	}

	when := ev.Date.Format("Mon, Jan 2")
	switch stage {
	case StageTwoDays:
		body = fmt.Sprintf("%s is in 2 days (%s)", ev.Name, when)
	case StageOneDay:
		body = fmt.Sprintf("%s is tomorrow (%s)", ev.Name, when)
	case StageFallback:
		body = fmt.Sprintf("%s is today", ev.Name)
	default:
		body = fmt.Sprintf("%s (%s)", ev.Name, when)
	}
	return title, body
}
