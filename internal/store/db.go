package store

import (
	"context"
	"database/sql"
	"log/slog"
)

// DBTX is an interface that abstracts the database access layer.
// It is implemented by both *sql.DB and *sql.Tx, allowing our code
// to work with either a database connection or a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxBeginner starts transactions. *sql.DB implements it, *sql.Tx does not.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Dialect isolates the SQL engine specific parts of data access.
type Dialect interface {
	// Name identifies the engine in logs ("postgres", "sqlite").
	Name() string

	// Rebind rewrites the '?' placeholders of a statement template into the
	// engine's positional parameter syntax.
	Rebind(query string) string

	// TableExists consults the catalog for a table in the current schema.
	TableExists(ctx context.Context, db DBTX, table string) (bool, error)

	// TruncateStatement returns a statement removing every row of table.
	TruncateStatement(table string) string

	// MapError classifies a driver error into the store error taxonomy:
	// ErrNotFound, ErrConstraintViolation (with a *ConstraintError in the
	// chain), ErrConnectivity, or the original error when nothing matches.
	MapError(err error) error

	// Diagnose extracts engine diagnostics (SQLSTATE, codes, message) from a
	// driver error for logging. It returns nil for foreign errors.
	Diagnose(err error) []slog.Attr
}
