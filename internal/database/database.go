package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/vasari/tienda/internal/config"
	"github.com/vasari/tienda/internal/platform/logger"
	"github.com/vasari/tienda/internal/platform/postgres"
	"github.com/vasari/tienda/internal/platform/sqlite"
	"github.com/vasari/tienda/internal/redact"
	"github.com/vasari/tienda/internal/store"
)

// Open opens the database described by cfg and verifies it is reachable
// within cfg.PingTimeout. The returned handle holds at most one connection.
// A failed probe closes the handle and returns an error wrapping
// store.ErrConnectivity.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*sql.DB, error) {
	log = logger.FromContextOrDefault(ctx, log).With(slog.String("component", "database"))

	log.Info("opening database connection",
		slog.String("driver", cfg.Driver),
		slog.String("url", redact.DSN(cfg.URL)))

	db, err := sql.Open(cfg.Driver, cfg.URL)
	if err != nil {
		log.Error("failed to open database connection",
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	start := time.Now()
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		log.Error("database ping failed",
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		if closeErr := db.Close(); closeErr != nil {
			log.Warn("failed to close database after ping failure",
				slog.String("error", closeErr.Error()))
		}
		return nil, classifyPingError(err, cfg.PingTimeout)
	}

	log.Info("database connection verified",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return db, nil
}

// classifyPingError wraps a ping failure in store.ErrConnectivity with a hint
// matching its cause.
func classifyPingError(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: database ping timed out after %s: %w", store.ErrConnectivity, timeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: network timeout connecting to database: %w", store.ErrConnectivity, err)
		}
		return fmt.Errorf("%w: network error connecting to database (check hostname and port): %w", store.ErrConnectivity, err)
	}

	return fmt.Errorf("%w: failed to connect to database: %w", store.ErrConnectivity, err)
}

// DialectFor returns the SQL dialect for a configured driver.
func DialectFor(driver string) (store.Dialect, error) {
	switch driver {
	case config.DriverPostgres:
		return postgres.New(), nil
	case config.DriverSQLite:
		return sqlite.New(), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}
