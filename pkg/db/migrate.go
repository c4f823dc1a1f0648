package db

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	schema "github.com/doodlesbykumbi/jobtracker/db"
)

// MigrationsTable is the golang-migrate bookkeeping table.
const MigrationsTable = "schema_migrations"

// MigrationsDirEnv names a directory of migration files to use instead of
// the ones embedded in the binary.
const MigrationsDirEnv = "JOBTRACKER_MIGRATIONS_DIR"

// MigrationStatus describes the schema version of a database.
type MigrationStatus struct {
	Version uint
	Dirty   bool
	// Applied is false when no migration has run yet.
	Applied bool
}

// withMigrationsTable appends the x-migrations-table parameter to dbURL.
func withMigrationsTable(dbURL string) string {
	if strings.Contains(dbURL, "?") {
		return dbURL + "&x-migrations-table=" + MigrationsTable
	}
	return dbURL + "?x-migrations-table=" + MigrationsTable
}

// NewMigrator returns a migrate instance reading the embedded migrations,
// or the directory in JOBTRACKER_MIGRATIONS_DIR when set. The caller
// closes it.
func NewMigrator(dbURL string) (*migrate.Migrate, error) {
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	if dir := os.Getenv(MigrationsDirEnv); dir != "" {
		m, err := migrate.New("file://"+dir, withMigrationsTable(dbURL))
		if err != nil {
			return nil, fmt.Errorf("failed to create migrate instance from %s: %w", dir, err)
		}
		return m, nil
	}

	migrationsFS, err := fs.Sub(schema.Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to get embedded migrations: %w", err)
	}

	d, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, withMigrationsTable(dbURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// MigrateUp applies all pending migrations. It returns the resulting status
// and whether anything changed.
func MigrateUp(dbURL string) (MigrationStatus, bool, error) {
	m, err := NewMigrator(dbURL)
	if err != nil {
		return MigrationStatus{}, false, err
	}
	defer func() { _, _ = m.Close() }()

	changed := true
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return MigrationStatus{}, false, fmt.Errorf("migration failed: %w", err)
		}
		changed = false
	}

	status, err := migrationStatus(m)
	return status, changed, err
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(dbURL string, steps int) (MigrationStatus, error) {
	if steps < 1 {
		return MigrationStatus{}, fmt.Errorf("steps must be at least 1, got %d", steps)
	}

	m, err := NewMigrator(dbURL)
	if err != nil {
		return MigrationStatus{}, err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Steps(-steps); err != nil {
		return MigrationStatus{}, fmt.Errorf("rollback failed: %w", err)
	}
	return migrationStatus(m)
}

// Status reports the current schema version.
func Status(dbURL string) (MigrationStatus, error) {
	m, err := NewMigrator(dbURL)
	if err != nil {
		return MigrationStatus{}, err
	}
	defer func() { _, _ = m.Close() }()

	return migrationStatus(m)
}

func migrationStatus(m *migrate.Migrate) (MigrationStatus, error) {
	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return MigrationStatus{}, nil
		}
		return MigrationStatus{}, err
	}
	return MigrationStatus{Version: version, Dirty: dirty, Applied: true}, nil
}
