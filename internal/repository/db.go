package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewDB creates a new PostgreSQL connection pool.
func NewDB(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// RunMigrations executes the initial schema migration.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS orders (
			id                 TEXT PRIMARY KEY,
			email              TEXT NOT NULL,
			phone              TEXT NOT NULL DEFAULT '',
			amount_inr         BIGINT NOT NULL,
			currency           TEXT NOT NULL DEFAULT 'INR',
			status             TEXT NOT NULL DEFAULT 'created',
			payment_session_id TEXT NOT NULL DEFAULT '',
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_orders_email ON orders(email);

		CREATE TABLE IF NOT EXISTS download_tokens (
			token      TEXT PRIMARY KEY,
			order_id   TEXT NOT NULL,
			email      TEXT NOT NULL,
			used       BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_download_tokens_order_id ON download_tokens(order_id);

		CREATE TABLE IF NOT EXISTS entitlements (
			email      TEXT PRIMARY KEY,
			order_id   TEXT NOT NULL DEFAULT '',
			granted    BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS webhook_events (
			id           TEXT PRIMARY KEY,
			order_id     TEXT NOT NULL,
			event_type   TEXT NOT NULL,
			processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS course (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			price_inr   BIGINT NOT NULL DEFAULT 0,
			object_key  TEXT NOT NULL DEFAULT '',
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		INSERT INTO course (id) VALUES ('default') ON CONFLICT (id) DO NOTHING;
	`
	_, err := pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
