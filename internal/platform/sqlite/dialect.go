package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/vasari/tienda/internal/store"
)

// Dialect implements store.Dialect for SQLite.
type Dialect struct{}

var _ store.Dialect = Dialect{}

// New returns the SQLite dialect.
func New() Dialect {
	return Dialect{}
}

// Name implements store.Dialect.Name.
func (Dialect) Name() string {
	return "sqlite"
}

// Rebind implements store.Dialect.Rebind. SQLite accepts '?' natively.
func (Dialect) Rebind(query string) string {
	return query
}

// TableExists implements store.Dialect.TableExists.
func (Dialect) TableExists(ctx context.Context, db store.DBTX, table string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
		strings.ToLower(table),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query catalog for table %s: %w", table, err)
	}
	return n > 0, nil
}

// TruncateStatement implements store.Dialect.TruncateStatement.
// SQLite has no TRUNCATE; an unqualified DELETE takes the truncate path.
func (Dialect) TruncateStatement(table string) string {
	return "DELETE FROM " + table
}

// MapError implements store.Dialect.MapError.
func (Dialect) MapError(err error) error {
	return MapError(err)
}

// Diagnose implements store.Dialect.Diagnose.
func (Dialect) Diagnose(err error) []slog.Attr {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return nil
	}
	code := sqliteErr.Code()
	attrs := []slog.Attr{
		slog.Int("sqlite_code", code),
		slog.Int("sqlite_primary_code", code&0xff),
	}
	if name, ok := msqlite.ErrorCodeString[code]; ok {
		attrs = append(attrs, slog.String("sqlite_code_name", name))
	}
	return append(attrs, slog.String("db_message", sqliteErr.Error()))
}

// violationPattern matches "UNIQUE constraint failed: tienda.id" and
// "CHECK constraint failed: articulos_precio_check".
var violationPattern = regexp.MustCompile(`(UNIQUE|PRIMARY KEY|NOT NULL|CHECK|FOREIGN KEY) constraint failed(?::\s*([A-Za-z0-9_.]+))?`)

// MapError maps a driver error to the store error taxonomy.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return store.MapCommonError(err)
	}

	code := sqliteErr.Code()
	switch code & 0xff {
	case sqlite3lib.SQLITE_CONSTRAINT:
		return newConstraintError(code, sqliteErr.Error(), err)
	case sqlite3lib.SQLITE_CANTOPEN, sqlite3lib.SQLITE_IOERR, sqlite3lib.SQLITE_NOTADB:
		return fmt.Errorf("%w: %w", store.ErrConnectivity, err)
	}
	return err
}

func newConstraintError(code int, message string, err error) *store.ConstraintError {
	ce := &store.ConstraintError{
		Kind: kindForCode(code),
		Code: fmt.Sprintf("%d", code),
		Err:  err,
	}

	m := violationPattern.FindStringSubmatch(message)
	if m == nil {
		return ce
	}
	if ce.Kind == store.ConstraintOther {
		ce.Kind = kindForKeyword(m[1])
	}

	target := m[2]
	if ce.Kind == store.ConstraintCheck {
		ce.Constraint = target
		return ce
	}
	// Composite keys are reported as "t.a, t.b"; the first column is enough.
	if table, column, ok := strings.Cut(target, "."); ok {
		ce.Table, ce.Column = table, column
	}
	return ce
}

func kindForCode(code int) store.ConstraintKind {
	switch code {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return store.ConstraintUnique
	case sqlite3lib.SQLITE_CONSTRAINT_CHECK:
		return store.ConstraintCheck
	case sqlite3lib.SQLITE_CONSTRAINT_NOTNULL:
		return store.ConstraintNotNull
	case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
		return store.ConstraintForeignKey
	}
	return store.ConstraintOther
}

func kindForKeyword(keyword string) store.ConstraintKind {
	switch keyword {
	case "UNIQUE", "PRIMARY KEY":
		return store.ConstraintUnique
	case "CHECK":
		return store.ConstraintCheck
	case "NOT NULL":
		return store.ConstraintNotNull
	case "FOREIGN KEY":
		return store.ConstraintForeignKey
	}
	return store.ConstraintOther
}
