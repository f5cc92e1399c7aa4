package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// bsYearOffsets are the candidate BS years a gregorian year can fall into.
// A gregorian year straddles the BS New Year (mid-April), so a date belongs
// to either AD+56 or AD+57. The earlier year is tried first, which also
// covers the cross-boundary fallback when only the earlier dataset exists.
var bsYearOffsets = [2]int{56, 57}

// Provider loads yearly calendars on demand and caches them for the
// process lifetime. It also maintains a gregorian-date index over every
// loaded year so arbitrary dates resolve to their BS coordinates without
// a separate conversion library.
//
// Safe for concurrent use.
type Provider struct {
	loader Loader
	logger *slog.Logger

	years *gocache.Cache // "2082" -> YearCalendar

	mu      sync.Mutex
	index   map[string]Found // "2025-10-20" -> resolved day
	missing map[int]bool     // years with no dataset, probed once
}

// Found is a day record resolved from a gregorian date.
type Found struct {
	Day DayRecord
	BS  BSDate
}

// NewProvider wraps a Loader with process-lifetime caching.
func NewProvider(loader Loader, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		loader:  loader,
		logger:  logger,
		years:   gocache.New(gocache.NoExpiration, 0),
		index:   make(map[string]Found),
		missing: make(map[int]bool),
	}
}

// LoadYear returns the calendar for a BS year, loading it at most once.
// Returns ErrDataUnavailable (wrapped) when no dataset exists.
func (p *Provider) LoadYear(ctx context.Context, bsYear int) (YearCalendar, error) {
	key := strconv.Itoa(bsYear)
	if cached, ok := p.years.Get(key); ok {
		return cached.(YearCalendar), nil
	}

	p.mu.Lock()
	known := p.missing[bsYear]
	p.mu.Unlock()
	if known {
		return nil, fmt.Errorf("year %d: %w", bsYear, ErrDataUnavailable)
	}

	cal, err := p.loader.LoadYear(ctx, bsYear)
	if err != nil {
		if errors.Is(err, ErrDataUnavailable) {
			p.mu.Lock()
			p.missing[bsYear] = true
			p.mu.Unlock()
			p.logger.Warn("Calendar year unavailable", "bs_year", bsYear)
		}
		return nil, err
	}

	p.years.Set(key, cal, gocache.NoExpiration)
	p.indexYear(bsYear, cal)
	p.logger.Info("Calendar year loaded", "bs_year", bsYear, "days", cal.Days())
	return cal, nil
}

// FindGregorian resolves a wall-clock instant to its BS day record,
// loading candidate years as needed. The boolean is false when no loaded
// or loadable dataset covers the date — a soft "no data" result.
func (p *Provider) FindGregorian(ctx context.Context, t time.Time) (Found, bool) {
	key := t.Format(DateLayout)

	if f, ok := p.lookup(key); ok {
		return f, true
	}

	for _, off := range bsYearOffsets {
		if _, err := p.LoadYear(ctx, t.Year()+off); err != nil && !errors.Is(err, ErrDataUnavailable) {
			p.logger.Warn("Calendar load failed", "bs_year", t.Year()+off, "error", err)
		}
		if f, ok := p.lookup(key); ok {
			return f, true
		}
	}
	return Found{}, false
}

// CachedYears reports how many yearly datasets are resident.
func (p *Provider) CachedYears() int {
	return p.years.ItemCount()
}

func (p *Provider) lookup(key string) (Found, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f, ok := p.index[key]
	return f, ok
}

// indexYear records every day's gregorian date for reverse lookups.
// Days with unparseable gregorian dates are skipped, not fatal.
func (p *Provider) indexYear(bsYear int, cal YearCalendar) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for m := 1; m <= monthsPerYear; m++ {
		for i, day := range cal.Month(m) {
			if day.GregorianDate == "" {
				continue
			}
			if _, err := day.GregorianTime(time.UTC); err != nil {
				p.logger.Warn("Skipping malformed day record",
					"bs_year", bsYear, "month", m, "day", i+1, "gregorian", day.GregorianDate)
				continue
			}
			p.index[day.GregorianDate] = Found{
				Day: day,
				BS:  BSDate{Year: bsYear, Month: m, Day: i + 1},
			}
		}
	}
}
