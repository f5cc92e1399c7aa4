package flagstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgOpTimeout = 3 * time.Second

// Postgres is a Store backed by a single flags table, for deployments
// where several instances must share reminder state. Per the Store
// contract it never surfaces errors: an unreachable database makes reads
// report absent and writes no-ops.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres connects a pool and ensures the flags table exists.
// Unlike the other backends, opening fails loudly — a misconfigured
// DATABASE_URL at startup is an operator error, not a runtime blip.
func OpenPostgres(ctx context.Context, databaseURL string, logger *slog.Logger) (*Postgres, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS reminder_flags (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure reminder_flags table: %w", err)
	}

	return &Postgres{pool: pool, logger: logger}, nil
}

// Close releases the underlying pool.
func (p *Postgres) Close() { p.pool.Close() }

// Ping verifies database connectivity, for health checks.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, pgOpTimeout)
	defer cancel()

	var value string
	err := p.pool.QueryRow(ctx, `SELECT value FROM reminder_flags WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			p.logger.Warn("Flag read failed", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

func (p *Postgres) Set(ctx context.Context, key, value string) {
	ctx, cancel := context.WithTimeout(ctx, pgOpTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx, `
		INSERT INTO reminder_flags (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`, key, value)
	if err != nil {
		p.logger.Warn("Flag write failed", "key", key, "error", err)
	}
}

func (p *Postgres) Remove(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, pgOpTimeout)
	defer cancel()

	if _, err := p.pool.Exec(ctx, `DELETE FROM reminder_flags WHERE key = $1`, key); err != nil {
		p.logger.Warn("Flag delete failed", "key", key, "error", err)
	}
}

func (p *Postgres) List(ctx context.Context, prefix string) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, pgOpTimeout)
	defer cancel()

	out := make(map[string]string)
	rows, err := p.pool.Query(ctx,
		`SELECT key, value FROM reminder_flags WHERE key LIKE $1 || '%'`, prefix)
	if err != nil {
		p.logger.Warn("Flag list failed", "prefix", prefix, "error", err)
		return out
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			p.logger.Warn("Flag list scan failed", "error", err)
			return out
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		p.logger.Warn("Flag list iteration failed", "error", err)
	}
	return out
}
