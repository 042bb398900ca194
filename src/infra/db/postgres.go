package db

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"gussgame/src/infra/config"
)

const (
	pingAttempts     = 5
	pingInitialDelay = 250 * time.Millisecond
)

// Postgres wraps a pgx connection pool with helper methods.
type Postgres struct {
	Pool *pgxpool.Pool
	log  *slog.Logger

	closeOnce sync.Once
}

// New opens a pool from the application config.
func New(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*Postgres, error) {
	return Connect(ctx, cfg.DSN(), func(poolCfg *pgxpool.Config) {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}, log)
}

// Connect opens a pool for an explicit DSN. tune may adjust pool settings before connecting.
func Connect(ctx context.Context, dsn string, tune func(*pgxpool.Config), log *slog.Logger) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if tune != nil {
		tune(poolCfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pingWithRetry(ctx, pool, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established",
		"host", poolCfg.ConnConfig.Host,
		"port", poolCfg.ConnConfig.Port,
		"database", poolCfg.ConnConfig.Database,
	)

	return &Postgres{
		Pool: pool,
		log:  log,
	}, nil
}

// pingWithRetry waits for the database to come up, e.g. when both start
// together under docker compose.
func pingWithRetry(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	delay := pingInitialDelay
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = pool.Ping(ctx); err == nil {
			return nil
		}
		if attempt == pingAttempts {
			break
		}
		log.Warn("database not ready, retrying", "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

// Close releases the pool. Safe to call more than once.
func (p *Postgres) Close() {
	p.closeOnce.Do(func() {
		if p.Pool != nil {
			p.Pool.Close()
			p.log.Info("database connection closed")
		}
	})
}

// Health checks if the database is reachable.
func (p *Postgres) Health(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}
