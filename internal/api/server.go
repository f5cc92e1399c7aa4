package api

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/sajilopatro/patro-data/internal/api/handler"
	"github.com/sajilopatro/patro-data/internal/calendar"
	"github.com/sajilopatro/patro-data/internal/config"
	"github.com/sajilopatro/patro-data/internal/flagstore"
	"github.com/sajilopatro/patro-data/internal/notifications"
)

//go:embed openapi.json
var openapiSpec []byte

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(provider *calendar.Provider, store flagstore.Store, sched *notifications.Scheduler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// --- Handler dependencies ---
	h := handler.New(provider, store, sched, cfg)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/store", h.HealthCheckStore)
	})

	// API v1. Rate limiting guards only this group; health probes and
	// the docs UI stay unthrottled.
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitEnabled {
			r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}
		r.Get("/upcoming", h.Upcoming)
		r.Get("/upcoming.ics", h.UpcomingICS)
		r.Get("/calendar/{bsYear}", h.CalendarYear)
		r.Get("/calendar/{bsYear}/{month}", h.CalendarMonth)
		r.Get("/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write(openapiSpec)
		})
	})

	// Swagger UI over the hand-maintained OpenAPI document.
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/api/v1/openapi.json"),
	))

	return r
}
