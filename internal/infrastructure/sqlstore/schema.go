package sqlstore

import (
	"context"
	"fmt"
)

// position has no UNIQUE constraint: Postgres checks non-deferred unique
// constraints row by row, which would reject the shift updates halfway.
// Uniqueness is kept by the table lock taken in every position-changing
// transaction.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id             BIGSERIAL PRIMARY KEY,
		name           TEXT NOT NULL,
		checked_off    BOOLEAN NOT NULL DEFAULT FALSE,
		position       INTEGER NOT NULL CHECK (position >= 0),
		checked_off_at TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_position ON items (position)`,
	`CREATE INDEX IF NOT EXISTS idx_items_checked_off_at ON items (checked_off_at)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS items (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		name           TEXT NOT NULL,
		checked_off    BOOLEAN NOT NULL DEFAULT 0,
		position       INTEGER NOT NULL CHECK (position >= 0),
		checked_off_at TIMESTAMP,
		created_at     TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_items_position ON items (position)`,
	`CREATE INDEX IF NOT EXISTS idx_items_checked_off_at ON items (checked_off_at)`,
}

// Migrate creates the items table and its indexes if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range db.dialect.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
