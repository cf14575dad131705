package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// sqlBackend stores items in a kv_items table. Dialects differ only in
// their upsert statement.
type sqlBackend struct {
	db     *sql.DB
	upsert string
	now    func() time.Time
}

func (b *sqlBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv_items WHERE item_key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get item %q: %w", key, err)
	}
	return value, true, nil
}

func (b *sqlBackend) SetItem(ctx context.Context, key, value string) error {
	_, err := b.db.ExecContext(ctx, b.upsert, key, value, b.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set item %q: %w", key, err)
	}
	return nil
}

func (b *sqlBackend) RemoveItem(ctx context.Context, key string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM kv_items WHERE item_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to remove item %q: %w", key, err)
	}
	return nil
}

// Close closes the database connection.
func (b *sqlBackend) Close() error {
	return b.db.Close()
}
