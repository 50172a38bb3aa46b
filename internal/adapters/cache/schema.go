package cache

import (
	"context"
	"database/sql"
	"fmt"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address      TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	lon          DOUBLE PRECISION NOT NULL,
	lat          DOUBLE PRECISION NOT NULL
);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address      TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	lon          REAL NOT NULL,
	lat          REAL NOT NULL
);
`

// InitPostgresSchema creates the geocode_cache table if it does not
// already exist.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("init postgres geocode_cache schema: %w", err)
	}
	return nil
}

// InitSqliteSchema creates the geocode_cache table if it does not
// already exist.
func InitSqliteSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("init sqlite geocode_cache schema: %w", err)
	}
	return nil
}
