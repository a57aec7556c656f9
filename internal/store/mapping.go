package store

import (
	"errors"
	"fmt"
)

// Statements are the hand-written SQL templates of one table. Parameters are
// written as '?' and bound positionally in the order they appear; the dialect
// rewrites them for the engine.
type Statements struct {
	Insert     string // all columns, key first
	SelectByID string // key as the only parameter
	SelectAll  string // no parameters, no ORDER BY
	DeleteByID string // key as the only parameter
	Update     string // mutable columns, then the key
	Count      string
}

// Mapping ties an entity type to its table.
type Mapping[T any] struct {
	// Entity names the record kind in errors and logs ("store").
	Entity string
	// Table is the unquoted, lower-case table name.
	Table string
	// CreateTable is the DDL used by PrepareTable when the table is missing.
	CreateTable string
	Statements  Statements

	// ID returns the primary key of a record.
	ID func(T) int
	// InsertArgs returns the values bound to Statements.Insert.
	InsertArgs func(T) []any
	// UpdateArgs returns the values bound to Statements.Update.
	UpdateArgs func(T) []any
	// Scan hydrates a record from a row selected by SelectByID or SelectAll.
	Scan func(Scanner) (T, error)
}

// Validate reports a mapping with missing pieces.
func (m Mapping[T]) Validate() error {
	var errs []error
	required := map[string]string{
		"entity":       m.Entity,
		"table":        m.Table,
		"create table": m.CreateTable,
		"insert":       m.Statements.Insert,
		"select by id": m.Statements.SelectByID,
		"select all":   m.Statements.SelectAll,
		"delete by id": m.Statements.DeleteByID,
		"update":       m.Statements.Update,
		"count":        m.Statements.Count,
	}
	for name, value := range required {
		if value == "" {
			errs = append(errs, fmt.Errorf("mapping %q: %s is empty", m.Table, name))
		}
	}
	if m.ID == nil || m.InsertArgs == nil || m.UpdateArgs == nil || m.Scan == nil {
		errs = append(errs, fmt.Errorf("mapping %q: ID, InsertArgs, UpdateArgs and Scan are required", m.Table))
	}
	return errors.Join(errs...)
}
