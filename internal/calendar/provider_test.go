package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	years map[int]YearCalendar
	loads map[int]int
}

func newCountingLoader(years map[int]YearCalendar) *countingLoader {
	return &countingLoader{years: years, loads: make(map[int]int)}
}

func (l *countingLoader) LoadYear(_ context.Context, bsYear int) (YearCalendar, error) {
	l.loads[bsYear]++
	cal, ok := l.years[bsYear]
	if !ok {
		return nil, fmt.Errorf("year %d: %w", bsYear, ErrDataUnavailable)
	}
	return cal, nil
}

func twoYearFixture() map[int]YearCalendar {
	return map[int]YearCalendar{
		// BS 2081 ends mid-April 2025; its last month covers early April.
		2081: {
			"12": []DayRecord{
				{GregorianDate: "2025-04-12", WeekdayOrdinal: 7},
				{GregorianDate: "2025-04-13", WeekdayOrdinal: 1},
			},
		},
		2082: {
			"01": []DayRecord{
				{GregorianDate: "2025-04-14", WeekdayOrdinal: 2},
				{GregorianDate: "2025-04-15", WeekdayOrdinal: 3},
			},
		},
	}
}

func TestLoadYearCachesResult(t *testing.T) {
	loader := newCountingLoader(twoYearFixture())
	p := NewProvider(loader, slog.Default())

	for i := 0; i < 3; i++ {
		cal, err := p.LoadYear(context.Background(), 2082)
		require.NoError(t, err)
		assert.Equal(t, 2, cal.Days())
	}
	assert.Equal(t, 1, loader.loads[2082], "dataset read at most once")
	assert.Equal(t, 1, p.CachedYears())
}

func TestLoadYearUnavailableProbedOnce(t *testing.T) {
	loader := newCountingLoader(twoYearFixture())
	p := NewProvider(loader, slog.Default())

	for i := 0; i < 3; i++ {
		_, err := p.LoadYear(context.Background(), 2099)
		assert.ErrorIs(t, err, ErrDataUnavailable)
	}
	assert.Equal(t, 1, loader.loads[2099], "missing year probed at most once")
}

func TestFindGregorianCrossYearBoundary(t *testing.T) {
	p := NewProvider(newCountingLoader(twoYearFixture()), slog.Default())

	// Before BS New Year: resolves into the earlier year (AD+56).
	before := time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC)
	found, ok := p.FindGregorian(context.Background(), before)
	require.True(t, ok)
	assert.Equal(t, BSDate{Year: 2081, Month: 12, Day: 1}, found.BS)

	// After BS New Year: resolves into AD+57.
	after := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)
	found, ok = p.FindGregorian(context.Background(), after)
	require.True(t, ok)
	assert.Equal(t, BSDate{Year: 2082, Month: 1, Day: 2}, found.BS)
	assert.Equal(t, 3, found.Day.WeekdayOrdinal)

	// A date no loaded dataset covers is a soft miss.
	_, ok = p.FindGregorian(context.Background(), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestIndexSkipsMalformedDays(t *testing.T) {
	years := map[int]YearCalendar{
		2082: {
			"01": []DayRecord{
				{GregorianDate: "not-a-date", WeekdayOrdinal: 2},
				{GregorianDate: "", WeekdayOrdinal: 3},
				{GregorianDate: "2025-04-16", WeekdayOrdinal: 4},
			},
		},
	}
	p := NewProvider(newCountingLoader(years), slog.Default())

	found, ok := p.FindGregorian(context.Background(), time.Date(2025, 4, 16, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	// Day position in the month is preserved even with bad siblings.
	assert.Equal(t, BSDate{Year: 2082, Month: 1, Day: 3}, found.BS)
}

func TestMonthKeyAndAccessors(t *testing.T) {
	cal := YearCalendar{
		"01": []DayRecord{{GregorianDate: "2025-04-14"}},
	}
	assert.Equal(t, "01", MonthKey(1))
	assert.Equal(t, "12", MonthKey(12))
	assert.Len(t, cal.Month(1), 1)
	assert.Nil(t, cal.Month(2))
	assert.Nil(t, cal.Month(0))
	assert.Nil(t, cal.Month(13))
	assert.Equal(t, 1, cal.Days())
}
