package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Common store errors used across all repositories.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrConstraintViolation is returned when the database rejects a statement
	// because it would break a schema constraint (primary key, CHECK, NOT NULL,
	// foreign key). A *ConstraintError with the details is in the chain.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrDuplicate is returned when an operation would create a second row
	// with the same key. It is also a constraint violation.
	ErrDuplicate = fmt.Errorf("%w: entity already exists", ErrConstraintViolation)

	// ErrConnectivity is returned when the database could not be reached or
	// the connection was lost during the call.
	ErrConnectivity = errors.New("database connectivity failure")

	// ErrTransactionFailed is returned when a database transaction fails
	// to begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}

// IsConstraintError checks if the error is any kind of constraint violation.
func IsConstraintError(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}

// IsConnectivityError reports whether err means the database itself could not
// be used, as opposed to the statement being rejected. It recognizes errors
// already classified as ErrConnectivity and the generic database/sql and
// network failures; dialects add their engine-specific codes.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConnectivity) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// MapCommonError classifies the engine-independent errors. Dialects call it
// after checking their own driver error types.
func MapCommonError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConstraintViolation), errors.Is(err, ErrConnectivity):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case IsConnectivityError(err):
		return fmt.Errorf("%w: %w", ErrConnectivity, err)
	}
	return err
}

// ConstraintKind names the kind of constraint a statement violated.
type ConstraintKind string

// Constraint kinds reported by the dialects.
const (
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintCheck      ConstraintKind = "check"
	ConstraintNotNull    ConstraintKind = "not_null"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintOther      ConstraintKind = "other"
)

// ConstraintError describes a statement rejected by a schema constraint.
// It matches ErrConstraintViolation with errors.Is, and ErrDuplicate as well
// when Kind is ConstraintUnique. The driver error stays reachable with errors.As.
type ConstraintError struct {
	Kind       ConstraintKind
	Table      string
	Column     string
	Constraint string
	Code       string // SQLSTATE or engine extended result code
	Err        error
}

// Error implements the error interface for ConstraintError.
func (e *ConstraintError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s constraint violation", e.Kind)
	if e.Table != "" {
		fmt.Fprintf(&b, " on %s", e.Table)
		if e.Column != "" {
			fmt.Fprintf(&b, ".%s", e.Column)
		}
	}
	if e.Constraint != "" {
		fmt.Fprintf(&b, " (%s)", e.Constraint)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes the class sentinel and the driver error.
func (e *ConstraintError) Unwrap() []error {
	class := ErrConstraintViolation
	if e.Kind == ConstraintUnique {
		class = ErrDuplicate
	}
	if e.Err == nil {
		return []error{class}
	}
	return []error{class, e.Err}
}

// Message returns a human-friendly description suitable for end users.
func (e *ConstraintError) Message() string {
	field := humanize(e.Column)
	entity := humanize(e.Table)
	if entity == "" {
		entity = "Record"
	}

	switch e.Kind {
	case ConstraintUnique:
		return fmt.Sprintf("A %s with this identifier already exists", strings.ToLower(entity))
	case ConstraintNotNull:
		if field == "" {
			field = "Field"
		}
		return fmt.Sprintf("The %s is required", field)
	case ConstraintCheck:
		if field != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", field)
		}
		return "One or more values do not meet required conditions"
	case ConstraintForeignKey:
		return fmt.Sprintf("The referenced %s does not exist", strings.ToLower(entity))
	default:
		return "The values violate a database constraint"
	}
}

// humanize converts snake_case identifiers into Title Case.
func humanize(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "store", "article")
	Operation string // The operation that failed (e.g., "insert", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// CauseChain lists the messages of err and of every error it wraps, outermost
// first. Multi-error nodes are walked depth first.
func CauseChain(err error) []string {
	var chain []string
	var walk func(error)
	walk = func(e error) {
		for e != nil {
			chain = append(chain, e.Error())
			switch u := e.(type) {
			case interface{ Unwrap() []error }:
				for _, inner := range u.Unwrap() {
					walk(inner)
				}
				return
			case interface{ Unwrap() error }:
				e = u.Unwrap()
			default:
				return
			}
		}
	}
	walk(err)
	return chain
}
