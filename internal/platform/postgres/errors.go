package postgres

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vasari/tienda/internal/store"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// foreignKeyViolationCode is the PostgreSQL error code for foreign key violations
	foreignKeyViolationCode = "23503"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"

	// integrityClass prefixes every integrity constraint violation
	integrityClass = "23"

	// connectionExceptionClass prefixes every connection exception
	connectionExceptionClass = "08"
)

// connectivityCodes are server-side codes meaning the session is unusable.
var connectivityCodes = map[string]bool{
	"57P01": true, // admin_shutdown
	"57P02": true, // crash_shutdown
	"57P03": true, // cannot_connect_now
	"53300": true, // too_many_connections
}

// MapError maps a database error to the store error taxonomy.
// The driver error stays in the chain.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolationCode:
			return newConstraintError(store.ConstraintUnique, pgErr, err)
		case pgErr.Code == foreignKeyViolationCode:
			return newConstraintError(store.ConstraintForeignKey, pgErr, err)
		case pgErr.Code == checkViolationCode:
			return newConstraintError(store.ConstraintCheck, pgErr, err)
		case pgErr.Code == notNullViolationCode:
			return newConstraintError(store.ConstraintNotNull, pgErr, err)
		case strings.HasPrefix(pgErr.Code, integrityClass):
			return newConstraintError(store.ConstraintOther, pgErr, err)
		case strings.HasPrefix(pgErr.Code, connectionExceptionClass), connectivityCodes[pgErr.Code]:
			return fmt.Errorf("%w: %w", store.ErrConnectivity, err)
		}
		// Statement errors from a live server are not connectivity failures
		// even if a timeout is somewhere in the chain.
		return err
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", store.ErrConnectivity, err)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return fmt.Errorf("%w: %w", store.ErrConnectivity, err)
	}

	return store.MapCommonError(err)
}

func newConstraintError(kind store.ConstraintKind, pgErr *pgconn.PgError, err error) *store.ConstraintError {
	return &store.ConstraintError{
		Kind:       kind,
		Table:      pgErr.TableName,
		Column:     pgErr.ColumnName,
		Constraint: pgErr.ConstraintName,
		Code:       pgErr.Code,
		Err:        err,
	}
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolationCode)
}

// IsCheckConstraintViolation checks if the given error is a PostgreSQL check constraint violation.
// This occurs when an operation would violate a CHECK constraint on a table.
func IsCheckConstraintViolation(err error) bool {
	return hasCode(err, checkViolationCode)
}

// IsNotNullViolation checks if the given error is a PostgreSQL not null constraint violation.
func IsNotNullViolation(err error) bool {
	return hasCode(err, notNullViolationCode)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// Diagnose implements store.Dialect.Diagnose: SQLSTATE, severity, message,
// detail and hint of the server error.
func (Dialect) Diagnose(err error) []slog.Attr {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	attrs := []slog.Attr{
		slog.String("sql_state", pgErr.Code),
		slog.String("severity", pgErr.Severity),
		slog.String("db_message", pgErr.Message),
	}
	if pgErr.Detail != "" {
		attrs = append(attrs, slog.String("detail", pgErr.Detail))
	}
	if pgErr.Hint != "" {
		attrs = append(attrs, slog.String("hint", pgErr.Hint))
	}
	return attrs
}
