// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/remind.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultTimezone anchors all reminder windows. The BS calendar datasets
// and the rest-day convention are defined against Nepal time.
const DefaultTimezone = "Asia/Kathmandu"

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Calendar data
	DataDir    string // directory of per-year <bsYear>.json datasets
	Timezone   string // IANA zone all windows are computed in
	WindowDays int    // forward scan window (today + N days)

	// Flag persistence. DatabaseURL takes precedence over FlagFile when
	// both are set; with neither, flags live in memory only.
	DatabaseURL string
	FlagFile    string

	// Push delivery (shoutrrr service URLs; empty disables push)
	ShoutrrrURLs []string

	// Maintenance
	FlagRetentionDays int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dataDir := envOr("CALENDAR_DATA_DIR", "data")
	if dataDir == "" {
		return nil, fmt.Errorf("CALENDAR_DATA_DIR must not be empty")
	}

	windowDays := envInt("REMINDER_WINDOW_DAYS", 7)
	if windowDays < 0 {
		return nil, fmt.Errorf("REMINDER_WINDOW_DAYS must be >= 0, got %d", windowDays)
	}

	return &Config{
		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		DataDir:    dataDir,
		Timezone:   envOr("TIMEZONE", DefaultTimezone),
		WindowDays: windowDays,

		DatabaseURL: envOr("DATABASE_URL", ""),
		FlagFile:    envOr("FLAG_FILE", "reminder-flags.json"),

		ShoutrrrURLs: envList("SHOUTRRR_URLS", nil),

		FlagRetentionDays: envInt("FLAG_RETENTION_DAYS", 90),
	}, nil
}

// Location resolves the configured timezone, falling back to UTC on a bad
// zone name rather than failing startup.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
