// Package holiday classifies calendar days and scans a forward window for
// days worth reminding about (public holidays and the Saturday rest day).
package holiday

import (
	"github.com/sajilopatro/patro-data/internal/calendar"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// RestDayOrdinal is the dataset weekday ordinal of the non-working
	// day. The dataset counts 1 = Sunday through 7 = Saturday.
	RestDayOrdinal = 7

	// RestDayLabel names a rest day that carries no holiday of its own.
	RestDayLabel = "Saturday"

	// FallbackLabel is used when a day qualifies but no usable name can
	// be resolved. The emitted name is never empty.
	FallbackLabel = "Holiday"
)

// Classification is the holiday verdict for a single day.
type Classification struct {
	IsHoliday   bool
	PrimaryName string // local name of the first public-holiday event, or ""
}

// ClassifyHoliday reports whether a day carries at least one public
// holiday and names the first one in list order. Total over malformed
// input: a nil or empty events list is simply not a holiday.
func ClassifyHoliday(day calendar.DayRecord) Classification {
	for _, ev := range day.Events {
		if ev.PublicHoliday {
			return Classification{IsHoliday: true, PrimaryName: ev.LocalName}
		}
	}
	return Classification{}
}

// IsRestWeekday reports whether a day falls on the fixed rest weekday.
func IsRestWeekday(day calendar.DayRecord) bool {
	return day.WeekdayOrdinal == RestDayOrdinal
}
