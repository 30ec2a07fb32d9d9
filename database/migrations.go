package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS networks (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		name       TEXT NOT NULL,
		money      DOUBLE PRECISION NOT NULL DEFAULT 10000,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_networks_user ON networks(user_id)`,
	`CREATE TABLE IF NOT EXISTS stations (
		id         TEXT PRIMARY KEY,
		network_id TEXT NOT NULL REFERENCES networks(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		x          DOUBLE PRECISION NOT NULL,
		y          DOUBLE PRECISION NOT NULL,
		type       TEXT NOT NULL DEFAULT 'metro',
		cost       DOUBLE PRECISION NOT NULL,
		revenue    DOUBLE PRECISION NOT NULL DEFAULT 100,
		seq        BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS lines (
		id         TEXT PRIMARY KEY,
		network_id TEXT NOT NULL REFERENCES networks(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		color      TEXT NOT NULL DEFAULT '#FF0000',
		type       TEXT NOT NULL DEFAULT 'metro',
		seq        BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS line_stations (
		line_id    TEXT NOT NULL REFERENCES lines(id) ON DELETE CASCADE,
		station_id TEXT NOT NULL REFERENCES stations(id),
		stop_order INTEGER NOT NULL,
		PRIMARY KEY (line_id, stop_order)
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS networks (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		name       TEXT NOT NULL,
		money      REAL NOT NULL DEFAULT 10000,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_networks_user ON networks(user_id)`,
	`CREATE TABLE IF NOT EXISTS stations (
		id         TEXT PRIMARY KEY,
		network_id TEXT NOT NULL REFERENCES networks(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		x          REAL NOT NULL,
		y          REAL NOT NULL,
		type       TEXT NOT NULL DEFAULT 'metro',
		cost       REAL NOT NULL,
		revenue    REAL NOT NULL DEFAULT 100,
		seq        INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lines (
		id         TEXT PRIMARY KEY,
		network_id TEXT NOT NULL REFERENCES networks(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		color      TEXT NOT NULL DEFAULT '#FF0000',
		type       TEXT NOT NULL DEFAULT 'metro',
		seq        INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS line_stations (
		line_id    TEXT NOT NULL REFERENCES lines(id) ON DELETE CASCADE,
		station_id TEXT NOT NULL REFERENCES stations(id),
		stop_order INTEGER NOT NULL,
		PRIMARY KEY (line_id, stop_order)
	)`,
}

// RunMigrations ensures all required tables exist
func RunMigrations(ctx context.Context, db *sql.DB, dialect Dialect, logger *slog.Logger) error {
	logger.Info("checking database schema", "dialect", dialect)

	schema := sqliteSchema
	if dialect == Postgres {
		schema = postgresSchema
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
