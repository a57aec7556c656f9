package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasari/tienda/internal/platform/postgres"
	"github.com/vasari/tienda/internal/store"
)

// Mock PgError creation helper
func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           code,
		Message:        "error message",
		Detail:         "error details",
		Hint:           "error hint",
		SchemaName:     "public",
		TableName:      "articulos",
		ColumnName:     "precio",
		ConstraintName: "articulos_precio_check",
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		err            error
		wantConstraint bool
		wantDuplicate  bool
		wantConnect    bool
		wantNotFound   bool
		wantKind       store.ConstraintKind
	}{
		{name: "unique violation", err: newPgError("23505"), wantConstraint: true, wantDuplicate: true, wantKind: store.ConstraintUnique},
		{name: "check violation", err: newPgError("23514"), wantConstraint: true, wantKind: store.ConstraintCheck},
		{name: "not null violation", err: newPgError("23502"), wantConstraint: true, wantKind: store.ConstraintNotNull},
		{name: "foreign key violation", err: newPgError("23503"), wantConstraint: true, wantKind: store.ConstraintForeignKey},
		{name: "other integrity violation", err: newPgError("23P01"), wantConstraint: true, wantKind: store.ConstraintOther},
		{name: "wrapped check violation", err: fmt.Errorf("exec: %w", newPgError("23514")), wantConstraint: true, wantKind: store.ConstraintCheck},
		{name: "connection exception", err: newPgError("08006"), wantConnect: true},
		{name: "admin shutdown", err: newPgError("57P01"), wantConnect: true},
		{name: "no rows", err: sql.ErrNoRows, wantNotFound: true},
		{name: "bad connection", err: fmt.Errorf("query: %w", sql.ErrConnDone), wantConnect: true},
		{name: "deadline", err: context.DeadlineExceeded, wantConnect: true},
		{name: "syntax error", err: newPgError("42601")},
		{name: "generic error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mapped := postgres.MapError(tt.err)

			require.Error(t, mapped)
			assert.Equal(t, tt.wantConstraint, errors.Is(mapped, store.ErrConstraintViolation), "constraint class")
			assert.Equal(t, tt.wantDuplicate, errors.Is(mapped, store.ErrDuplicate), "duplicate class")
			assert.Equal(t, tt.wantConnect, errors.Is(mapped, store.ErrConnectivity), "connectivity class")
			assert.Equal(t, tt.wantNotFound, errors.Is(mapped, store.ErrNotFound), "not found class")
			assert.ErrorIs(t, mapped, tt.err, "original error must stay in the chain")

			if tt.wantConstraint {
				var constraintErr *store.ConstraintError
				require.ErrorAs(t, mapped, &constraintErr)
				assert.Equal(t, tt.wantKind, constraintErr.Kind)
				assert.Equal(t, "articulos", constraintErr.Table)
				assert.Equal(t, "precio", constraintErr.Column)
				assert.Equal(t, "articulos_precio_check", constraintErr.Constraint)
			}
		})
	}

	assert.NoError(t, postgres.MapError(nil))
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsUniqueViolation(newPgError("23505")))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23514")))
	assert.False(t, postgres.IsUniqueViolation(nil))

	assert.True(t, postgres.IsCheckConstraintViolation(fmt.Errorf("wrapped: %w", newPgError("23514"))))
	assert.False(t, postgres.IsCheckConstraintViolation(errors.New("generic error")))

	assert.True(t, postgres.IsNotNullViolation(newPgError("23502")))
	assert.False(t, postgres.IsNotNullViolation(newPgError("23503")))
}

func TestDiagnose(t *testing.T) {
	t.Parallel()

	attrs := postgres.New().Diagnose(fmt.Errorf("insert: %w", newPgError("23514")))

	values := make(map[string]string, len(attrs))
	for _, a := range attrs {
		values[a.Key] = a.Value.String()
	}
	assert.Equal(t, map[string]string{
		"sql_state":  "23514",
		"severity":   "ERROR",
		"db_message": "error message",
		"detail":     "error details",
		"hint":       "error hint",
	}, values)

	assert.Nil(t, postgres.New().Diagnose(errors.New("not a server error")))
}
