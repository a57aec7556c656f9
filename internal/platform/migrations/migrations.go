package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/vasari/tienda/internal/config"
	"github.com/vasari/tienda/internal/platform/logger"
)

//go:embed sql/*.sql
var files embed.FS

// dir is the location of the migration files inside the embedded FS.
const dir = "sql"

// TableName is the goose version table.
const TableName = "schema_migrations"

// Commands lists the goose commands Run accepts.
var Commands = []string{"up", "down", "status", "reset", "version"}

// goose keeps its settings in package state.
var gooseMu sync.Mutex

// GooseDialect returns the goose dialect name for a configured driver.
func GooseDialect(driver string) (string, error) {
	switch driver {
	case config.DriverPostgres:
		return "postgres", nil
	case config.DriverSQLite:
		return "sqlite3", nil
	}
	return "", fmt.Errorf("no migration dialect for driver %q", driver)
}

// Run executes a goose command against db using the embedded migrations.
func Run(ctx context.Context, db *sql.DB, driver, command string) error {
	log := logger.FromContext(ctx).With(
		slog.String("correlation_id", uuid.New().String()),
		slog.String("component", "migrations"),
		slog.String("command", command),
	)

	if !slices.Contains(Commands, command) {
		log.Error("unknown migration command",
			slog.Any("valid_commands", Commands))
		return fmt.Errorf("unknown migration command: %s (expected one of %v)", command, Commands)
	}

	dialect, err := GooseDialect(driver)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(files)
	goose.SetTableName(TableName)
	goose.SetLogger(&slogGooseLogger{logger: log})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	start := time.Now()
	log.Info("starting migration command", slog.String("dialect", dialect))

	if err := goose.RunContext(ctx, command, db, dir); err != nil {
		log.Error("migration command failed",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return fmt.Errorf("migration command '%s' failed: %w", command, err)
	}

	log.Info("migration command executed successfully",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}

// Version returns the schema version recorded in the goose version table.
func Version(ctx context.Context, db *sql.DB, driver string) (int64, error) {
	dialect, err := GooseDialect(driver)
	if err != nil {
		return 0, err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetTableName(TableName)
	if err := goose.SetDialect(dialect); err != nil {
		return 0, fmt.Errorf("failed to set dialect: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
