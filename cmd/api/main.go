// Command api is the Patro Data reminder service: it serves the calendar
// REST API and runs the background reminder engine.
//
// Usage:
//
//	patro-api
//	API_PORT=8080 CALENDAR_DATA_DIR=/var/lib/patro/data patro-api
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/sajilopatro/patro-data/internal/api"
	"github.com/sajilopatro/patro-data/internal/calendar"
	"github.com/sajilopatro/patro-data/internal/config"
	"github.com/sajilopatro/patro-data/internal/flagstore"
	"github.com/sajilopatro/patro-data/internal/holiday"
	"github.com/sajilopatro/patro-data/internal/maintenance"
	"github.com/sajilopatro/patro-data/internal/notifications"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	loc := cfg.Location()

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Open the flag store: Postgres when configured, else the flag file.
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open flag store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// Calendar provider over the per-year dataset directory
	provider := calendar.NewProvider(calendar.NewFileLoader(cfg.DataDir), logger)

	// Push transport + permission gate + scheduler
	sender := notifications.NewSender(cfg.ShoutrrrURLs, logger)
	gate := notifications.NewGatekeeper(ctx, notifications.NewTransportPermission(sender), store, logger)
	sched := notifications.NewScheduler(store, sender, gate, logger, loc)

	// Background reminder engine (initial scan + cron rescans)
	find := func(ctx context.Context) []holiday.Upcoming {
		return holiday.FindUpcoming(ctx, provider, cfg.WindowDays, time.Now().In(loc))
	}
	go notifications.StartWorker(ctx, find, sched, loc, logger)

	// Stale flag sweep
	go maintenance.Start(ctx, store, maintenance.DefaultConfig(cfg.FlagRetentionDays), logger)

	// Create router
	router := api.NewRouter(provider, store, sched, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Patro Data API",
			"addr", addr,
			"environment", cfg.Environment,
			"timezone", cfg.Timezone,
			"window_days", cfg.WindowDays)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

// openStore picks the flag backend. Postgres failing to open is fatal;
// the file store never fails (it degrades internally).
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (flagstore.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := flagstore.OpenPostgres(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Flag store opened", "backend", "postgres")
		return pg, pg.Close, nil
	}

	f := flagstore.OpenFile(cfg.FlagFile, logger)
	logger.Info("Flag store opened", "backend", "file", "path", cfg.FlagFile)
	return f, func() {}, nil
}
