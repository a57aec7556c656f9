package testdb

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vasari/tienda/internal/config"
	"github.com/vasari/tienda/internal/database"
	"github.com/vasari/tienda/internal/platform/migrations"
	"github.com/vasari/tienda/internal/store"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 5 * time.Second

// SQLiteConfig returns a configuration pointing at a fresh database file in
// a temporary directory owned by t.
func SQLiteConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		URL:         filepath.Join(t.TempDir(), "tienda.db"),
		PingTimeout: TestTimeout,
	}
}

// OpenSQLite opens a private in-memory SQLite database limited to one
// connection. It is closed when the test ends.
func OpenSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open(config.DriverSQLite, ":memory:")
	require.NoError(t, err, "Failed to open in-memory database")
	// Every connection to ":memory:" gets its own database.
	db.SetMaxOpenConns(1)

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close database: %v", err)
		}
	})
	return db
}

// OpenPostgres connects to the integration test database through
// database.Open, skipping the test when no URL is configured. The embedded
// migrations are applied first and reset on cleanup.
func OpenPostgres(t *testing.T) *sql.DB {
	t.Helper()

	if ShouldSkipDatabaseTest() {
		t.Skip("DATABASE_URL not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*TestTimeout)
	defer cancel()

	db, err := database.Open(ctx, config.DatabaseConfig{
		Driver:      config.DriverPostgres,
		URL:         GetTestDatabaseURL(),
		PingTimeout: TestTimeout,
	}, nil)
	require.NoError(t, err, "Failed to connect to integration database")

	ApplyMigrations(t, db, config.DriverPostgres)
	t.Cleanup(func() {
		if err := migrations.Run(context.Background(), db, config.DriverPostgres, "reset"); err != nil {
			t.Logf("Warning: failed to reset schema: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close database: %v", err)
		}
	})
	return db
}

// ApplyMigrations brings the schema of db up to date.
func ApplyMigrations(t *testing.T, db *sql.DB, driver string) {
	t.Helper()
	require.NoError(t, migrations.Run(context.Background(), db, driver, "up"), "Failed to run migrations")
}

// Repositories returns the repositories of every entity over db.
func Repositories(t *testing.T, db store.DBTX, dialect store.Dialect) *store.Repositories {
	t.Helper()
	repos, err := store.NewRepositories(db, dialect, nil)
	require.NoError(t, err)
	return repos
}

// WithTx executes a test function within a transaction, automatically rolling back
// after the test completes. This ensures test isolation and prevents side effects.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "Failed to begin transaction")

	defer func() {
		err := tx.Rollback()
		// sql.ErrTxDone is expected if tx is already committed or rolled back
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}
