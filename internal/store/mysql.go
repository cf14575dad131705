package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLBackend implements Backend using a MySQL kv_items table.
type MySQLBackend struct {
	sqlBackend
}

// ParseMySQLDSN validates dsn and applies the options the backend relies on.
func ParseMySQLDSN(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	if cfg.DBName == "" {
		return nil, fmt.Errorf("invalid mysql dsn: database name is required")
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg, nil
}

// NewMySQLBackend connects to the database named in dsn and applies
// pending migrations.
func NewMySQLBackend(ctx context.Context, dsn string) (*MySQLBackend, error) {
	cfg, err := ParseMySQLDSN(dsn)
	if err != nil {
		return nil, err
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create mysql connector: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	if err := runMigrations(ctx, db, mysqlDialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &MySQLBackend{sqlBackend{
		db: db,
		upsert: `
		INSERT INTO kv_items (item_key, value, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)
	`,
		now: time.Now,
	}}, nil
}
