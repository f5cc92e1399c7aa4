// Package calendar loads yearly Bikram Sambat calendar datasets and
// resolves gregorian dates to their BS coordinates.
//
// One JSON document per BS year, keyed by two-digit month, each month an
// ordered list of day records. The dataset is produced upstream and is
// treated as not fully trusted: missing or malformed fields degrade to
// zero values, never to a failed load.
package calendar

import (
	"fmt"
	"time"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// DateLayout is the gregorian date form used throughout the dataset.
	DateLayout = "2006-01-02"

	// TithiPurnima is the full-moon sentinel for the lunar day index.
	TithiPurnima = 15

	monthsPerYear = 12
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Event is one named observance attached to a calendar day.
type Event struct {
	LocalName     string `json:"localName"`
	AlternateName string `json:"alternateName,omitempty"`
	PublicHoliday bool   `json:"isPublicHoliday"`
}

// DayRecord is a single BS calendar day as it appears in the yearly dataset.
// Immutable after load; consumers only read it.
type DayRecord struct {
	// GregorianDate is the ISO date (YYYY-MM-DD) this BS day maps to.
	GregorianDate string `json:"gregorianDate"`

	// LunarDay is the tithi index (1–15, 15 = purnima). Zero means the
	// dataset did not carry one. Display only, never used for scheduling.
	LunarDay int `json:"lunarDayIndex,omitempty"`

	// WeekdayOrdinal is the dataset's day-of-week convention:
	// 1 = Sunday through 7 = Saturday.
	WeekdayOrdinal int `json:"weekdayOrdinal"`

	Events []Event `json:"events"`
}

// GregorianTime parses the record's gregorian date at midnight in loc.
func (d DayRecord) GregorianTime(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, d.GregorianDate, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse gregorian date %q: %w", d.GregorianDate, err)
	}
	return t, nil
}

// YearCalendar maps a two-digit month key ("01".."12") to that month's
// ordered day records.
type YearCalendar map[string][]DayRecord

// Month returns the day records for a 1-based month, or nil if the month
// is absent from the dataset.
func (y YearCalendar) Month(m int) []DayRecord {
	if m < 1 || m > monthsPerYear {
		return nil
	}
	return y[MonthKey(m)]
}

// Days returns the total number of day records across all months.
func (y YearCalendar) Days() int {
	n := 0
	for _, days := range y {
		n += len(days)
	}
	return n
}

// MonthKey formats a 1-based month as the dataset's two-digit key.
func MonthKey(m int) string {
	return fmt.Sprintf("%02d", m)
}

// BSDate is a Bikram Sambat year/month/day coordinate.
type BSDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// String renders the coordinate as YYYY-MM-DD in the BS calendar.
func (d BSDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
