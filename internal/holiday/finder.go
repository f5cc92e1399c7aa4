package holiday

import (
	"context"
	"time"

	"github.com/sajilopatro/patro-data/internal/calendar"
)

// Upcoming is one day worth notifying about, derived from a DayRecord.
// Its identity is the (Date, Name) pair; the scheduler and flag store use
// the same pair as the de-duplication key.
type Upcoming struct {
	Date      time.Time       `json:"date"` // midnight in the finder's location
	BS        calendar.BSDate `json:"bs"`
	Name      string          `json:"name"`
	IsHoliday bool            `json:"isHoliday"`
	IsRestDay bool            `json:"isRestDay"`
	LunarDay  int             `json:"lunarDayIndex,omitempty"`
}

// FindUpcoming scans today plus windowDays forward days (windowDays+1
// calendar days in total) and returns, in chronological order, every day
// that is a public holiday or the rest weekday. At most one entry per day
// is emitted even when both apply. Days the provider cannot resolve are
// skipped silently — missing data means "no events", not an error.
func FindUpcoming(ctx context.Context, p *calendar.Provider, windowDays int, now time.Time) []Upcoming {
	if windowDays < 0 {
		return nil
	}

	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var out []Upcoming
	for offset := 0; offset <= windowDays; offset++ {
		date := today.AddDate(0, 0, offset)

		found, ok := p.FindGregorian(ctx, date)
		if !ok {
			continue
		}

		cls := ClassifyHoliday(found.Day)
		rest := IsRestWeekday(found.Day)
		if !cls.IsHoliday && !rest {
			continue
		}

		out = append(out, Upcoming{
			Date:      date,
			BS:        found.BS,
			Name:      resolveName(cls, rest),
			IsHoliday: cls.IsHoliday,
			IsRestDay: rest,
			LunarDay:  found.Day.LunarDay,
		})
	}
	return out
}

// resolveName picks the display name: holiday name first, then the rest
// day label, then the generic fallback.
func resolveName(cls Classification, rest bool) string {
	if cls.IsHoliday && cls.PrimaryName != "" {
		return cls.PrimaryName
	}
	if rest {
		return RestDayLabel
	}
	return FallbackLabel
}
