// Package handler provides HTTP handlers for all API endpoints.
// Handlers read from the calendar provider and flag store directly — no
// service layer. The reminder engine runs independently; the API is a
// read-only window into the same data.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sajilopatro/patro-data/internal/api/respond"
	"github.com/sajilopatro/patro-data/internal/calendar"
	"github.com/sajilopatro/patro-data/internal/config"
	"github.com/sajilopatro/patro-data/internal/flagstore"
	"github.com/sajilopatro/patro-data/internal/holiday"
	"github.com/sajilopatro/patro-data/internal/notifications"
)

const maxWindowDays = 60

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	provider *calendar.Provider
	store    flagstore.Store
	sched    *notifications.Scheduler
	cfg      *config.Config
	loc      *time.Location
}

// New creates a Handler with shared dependencies.
func New(provider *calendar.Provider, store flagstore.Store, sched *notifications.Scheduler, cfg *config.Config) *Handler {
	return &Handler{
		provider: provider,
		store:    store,
		sched:    sched,
		cfg:      cfg,
		loc:      cfg.Location(),
	}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Patro Data API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"cached_years":   h.provider.CachedYears(),
		"pending_timers": h.sched.PendingTimers(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckStore verifies flag store connectivity where the backend
// supports it (Postgres). Memory and file stores are always healthy.
func (h *Handler) HealthCheckStore(w http.ResponseWriter, r *http.Request) {
	type pinger interface{ Ping(context.Context) error }

	if p, ok := h.store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":    "unhealthy",
				"store":     "disconnected",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"store":     "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Upcoming lists notifiable days in the forward window.
// GET /api/v1/upcoming?days=N
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	days, ok := h.windowDays(w, r)
	if !ok {
		return
	}

	events := holiday.FindUpcoming(r.Context(), h.provider, days, time.Now().In(h.loc))
	if events == nil {
		events = []holiday.Upcoming{}
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"windowDays": days,
		"count":      len(events),
		"events":     events,
	})
}

// CalendarYear serves one BS year's full dataset.
// GET /api/v1/calendar/{bsYear}
func (h *Handler) CalendarYear(w http.ResponseWriter, r *http.Request) {
	year, ok := h.bsYear(w, r)
	if !ok {
		return
	}

	cal, err := h.provider.LoadYear(r.Context(), year)
	if err != nil {
		respond.WriteError(w, http.StatusNotFound, "YEAR_NOT_FOUND",
			"No calendar dataset for BS year "+strconv.Itoa(year))
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, cal)
}

// CalendarMonth serves a single month of a BS year.
// GET /api/v1/calendar/{bsYear}/{month}
func (h *Handler) CalendarMonth(w http.ResponseWriter, r *http.Request) {
	year, ok := h.bsYear(w, r)
	if !ok {
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_MONTH", "Month must be 1-12")
		return
	}

	cal, err := h.provider.LoadYear(r.Context(), year)
	if err != nil {
		respond.WriteError(w, http.StatusNotFound, "YEAR_NOT_FOUND",
			"No calendar dataset for BS year "+strconv.Itoa(year))
		return
	}
	days := cal.Month(month)
	if days == nil {
		respond.WriteError(w, http.StatusNotFound, "MONTH_NOT_FOUND",
			"Month missing from dataset")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"bsYear": year,
		"month":  month,
		"days":   days,
	})
}

// --------------------------------------------------------------------------
// Param helpers
// --------------------------------------------------------------------------

func (h *Handler) windowDays(w http.ResponseWriter, r *http.Request) (int, bool) {
	days := h.cfg.WindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > maxWindowDays {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_WINDOW",
				"days must be 0-"+strconv.Itoa(maxWindowDays))
			return 0, false
		}
		days = n
	}
	return days, true
}

func (h *Handler) bsYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(chi.URLParam(r, "bsYear"))
	if err != nil || year < 1900 || year > 2300 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_YEAR", "BS year out of range")
		return 0, false
	}
	return year, true
}
