package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend implements Backend using SQLite.
type SQLiteBackend struct {
	sqlBackend
}

// NewSQLiteBackend opens (or creates) the database at dbPath and applies
// pending migrations. ":memory:" gives a private in-memory database.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and writes serialized.
	db.SetMaxOpenConns(1)

	if err := runMigrations(context.Background(), db, sqliteDialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteBackend{sqlBackend{
		db: db,
		upsert: `
		INSERT INTO kv_items (item_key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(item_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`,
		now: time.Now,
	}}, nil
}
