// Package store implements data access for the entity records in
// internal/domain. One generic Repository is parameterized by a Mapping that
// carries the table name, its DDL and hand-written statement templates, so
// every entity gets the same set of operations: PrepareTable, Insert,
// GetByID, List, Update, Delete and Count.
//
// Engine-specific details (placeholders, catalog lookups, error codes) live
// behind the Dialect interface, implemented in internal/platform/postgres and
// internal/platform/sqlite.
package store
