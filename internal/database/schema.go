package database

import (
	"context"
	"fmt"
	"log/slog"
)

// Schema creation is idempotent and additive only: statements use
// CREATE TABLE IF NOT EXISTS and are safe to run on every process start.

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY,
		username TEXT,
		first_name TEXT,
		joined_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS usage_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER,
		tool TEXT,
		used_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS banned_users (
		user_id INTEGER PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS ad_logs (
		user_id INTEGER,
		shown_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id BIGINT PRIMARY KEY,
		username TEXT,
		first_name TEXT,
		joined_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS usage_logs (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT,
		tool TEXT,
		used_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS banned_users (
		user_id BIGINT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS ad_logs (
		user_id BIGINT,
		shown_at TIMESTAMPTZ DEFAULT NOW()
	)`,
}

// Init ensures all tables exist. Existing data is never touched.
func (d *DB) Init(ctx context.Context) error {
	statements := sqliteSchema
	if d.dialect == DialectPostgres {
		statements = postgresSchema
	}

	opCtx, cancel := d.OperationContext(ctx)
	defer cancel()

	for _, stmt := range statements {
		if _, err := d.ExecContext(opCtx, stmt); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
	}

	if d.log != nil {
		d.log.Info("storage schema ensured", slog.String("dialect", string(d.dialect)))
	}

	return nil
}
