package holiday

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sajilopatro/patro-data/internal/calendar"
)

func TestClassifyHoliday(t *testing.T) {
	tests := []struct {
		name     string
		day      calendar.DayRecord
		holiday  bool
		expected string
	}{
		{
			name: "single public holiday",
			day: calendar.DayRecord{Events: []calendar.Event{
				{LocalName: "Dashain", PublicHoliday: true},
			}},
			holiday:  true,
			expected: "Dashain",
		},
		{
			name: "first public holiday wins",
			day: calendar.DayRecord{Events: []calendar.Event{
				{LocalName: "Ghatasthapana", PublicHoliday: false},
				{LocalName: "Dashain", PublicHoliday: true},
				{LocalName: "Tihar", PublicHoliday: true},
			}},
			holiday:  true,
			expected: "Dashain",
		},
		{
			name: "observance only is not a holiday",
			day: calendar.DayRecord{Events: []calendar.Event{
				{LocalName: "Teachers' Day", PublicHoliday: false},
			}},
		},
		{
			name: "no events",
			day:  calendar.DayRecord{Events: []calendar.Event{}},
		},
		{
			name: "nil events tolerated",
			day:  calendar.DayRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := ClassifyHoliday(tt.day)
			assert.Equal(t, tt.holiday, cls.IsHoliday)
			assert.Equal(t, tt.expected, cls.PrimaryName)
		})
	}
}

func TestIsRestWeekday(t *testing.T) {
	for ordinal := 1; ordinal <= 7; ordinal++ {
		day := calendar.DayRecord{WeekdayOrdinal: ordinal}
		assert.Equal(t, ordinal == RestDayOrdinal, IsRestWeekday(day), "ordinal %d", ordinal)
	}

	// Zero value (missing field in the dataset) is never a rest day.
	assert.False(t, IsRestWeekday(calendar.DayRecord{}))
}

func TestResolveName(t *testing.T) {
	assert.Equal(t, "Dashain", resolveName(Classification{IsHoliday: true, PrimaryName: "Dashain"}, true))
	assert.Equal(t, RestDayLabel, resolveName(Classification{}, true))
	// Holiday flagged but nameless event still never yields an empty name.
	assert.Equal(t, RestDayLabel, resolveName(Classification{IsHoliday: true}, true))
	assert.Equal(t, FallbackLabel, resolveName(Classification{IsHoliday: true}, false))
}
