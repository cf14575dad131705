package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/sqlite/*.sql migrations/mysql/*.sql
var migrationsFS embed.FS

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	// dir is the subdirectory of migrations/ holding this engine's files.
	dir string

	createMigrationsTable string
	tableExists           string
}

var sqliteDialect = dialect{
	dir: "sqlite",
	createMigrationsTable: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	tableExists: `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`,
}

var mysqlDialect = dialect{
	dir: "mysql",
	createMigrationsTable: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT NOT NULL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	tableExists: `SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`,
}

type migration struct {
	version int
	name    string
	sql     string
}

func (m migration) String() string {
	return fmt.Sprintf("%d_%s", m.version, m.name)
}

// migrator applies the embedded migrations of one dialect to a database.
type migrator struct {
	db      *sql.DB
	dialect dialect
}

func runMigrations(ctx context.Context, db *sql.DB, d dialect) error {
	m := &migrator{db: db, dialect: d}

	if _, err := db.ExecContext(ctx, d.createMigrationsTable); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	pending, err := loadMigrations(d)
	if err != nil {
		return err
	}

	if err := m.adoptExistingSchema(ctx, pending); err != nil {
		return err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, mig := range pending {
		if applied[mig.version] {
			continue
		}
		if err := m.apply(ctx, mig); err != nil {
			return err
		}
	}
	return nil
}

// loadMigrations reads the dialect's migration files ordered by version.
func loadMigrations(d dialect) ([]migration, error) {
	dir := path.Join("migrations", d.dir)
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s migrations: %w", d.dir, err)
	}

	var migrations []migration
	seen := make(map[int]bool)
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}

		version, name, err := parseMigrationFilename(entry.Name())
		if err != nil {
			return nil, err
		}
		if seen[version] {
			return nil, fmt.Errorf("duplicate %s migration version: %d", d.dir, version)
		}
		seen[version] = true

		content, err := fs.ReadFile(migrationsFS, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, migration{version: version, name: name, sql: string(content)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})
	return migrations, nil
}

// parseMigrationFilename splits "<version>_<name>.sql".
func parseMigrationFilename(filename string) (int, string, error) {
	versionPart, name, ok := strings.Cut(strings.TrimSuffix(filename, path.Ext(filename)), "_")
	if !ok {
		return 0, "", fmt.Errorf("invalid migration filename %q: expected '<version>_<name>.sql'", filename)
	}

	version, err := strconv.Atoi(versionPart)
	if err != nil {
		return 0, "", fmt.Errorf("invalid migration version in %q: %w", filename, err)
	}
	return version, name, nil
}

func (m *migrator) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()

	versions := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		versions[version] = true
	}
	return versions, rows.Err()
}

func (m *migrator) apply(ctx context.Context, mig migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", mig, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, mig.sql); err != nil {
		return fmt.Errorf("failed to apply migration %s: %w", mig, err)
	}
	if err := m.record(ctx, tx, mig); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", mig, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (m *migrator) record(ctx context.Context, ex execer, mig migration) error {
	_, err := ex.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, mig.version, mig.name)
	if err != nil {
		return fmt.Errorf("failed to record migration %s: %w", mig, err)
	}
	return nil
}

// adoptExistingSchema marks the first migration applied when kv_items
// already exists but nothing has been recorded yet.
func (m *migrator) adoptExistingSchema(ctx context.Context, migrations []migration) error {
	if len(migrations) == 0 {
		return nil
	}

	var count int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count applied migrations: %w", err)
	}
	if count > 0 {
		return nil
	}

	exists, err := m.tableExists(ctx, "kv_items")
	if err != nil || !exists {
		return err
	}
	return m.record(ctx, m.db, migrations[0])
}

func (m *migrator) tableExists(ctx context.Context, table string) (bool, error) {
	var name string
	err := m.db.QueryRowContext(ctx, m.dialect.tableExists, table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return true, nil
}
