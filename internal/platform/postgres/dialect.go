package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vasari/tienda/internal/store"
)

// Dialect implements store.Dialect for PostgreSQL through the pgx driver.
type Dialect struct{}

// Ensure Dialect implements store.Dialect interface
var _ store.Dialect = Dialect{}

// New returns the PostgreSQL dialect.
func New() Dialect {
	return Dialect{}
}

// Name implements store.Dialect.Name.
func (Dialect) Name() string {
	return "postgres"
}

// Rebind implements store.Dialect.Rebind. Question marks inside single-quoted
// literals are left untouched.
func (Dialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inLiteral := false
	for _, r := range query {
		switch {
		case r == '\'':
			inLiteral = !inLiteral
			b.WriteRune(r)
		case r == '?' && !inLiteral:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

const tableExistsQuery = `
	SELECT EXISTS (
		SELECT 1
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_name = $1
	)
`

// TableExists implements store.Dialect.TableExists.
// Unquoted identifiers are folded to lower case by PostgreSQL, so table
// names are looked up in lower case.
func (Dialect) TableExists(ctx context.Context, db store.DBTX, table string) (bool, error) {
	var exists bool
	if err := db.QueryRowContext(ctx, tableExistsQuery, strings.ToLower(table)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to query catalog for table %s: %w", table, err)
	}
	return exists, nil
}

// TruncateStatement implements store.Dialect.TruncateStatement.
func (Dialect) TruncateStatement(table string) string {
	return "TRUNCATE TABLE " + table
}

// MapError implements store.Dialect.MapError.
func (Dialect) MapError(err error) error {
	return MapError(err)
}
