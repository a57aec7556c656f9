// Package sqlite provides the SQLite dialect for the repositories in
// internal/store, backed by the pure Go modernc.org/sqlite driver.
//
// Extended result codes are mapped onto the store error taxonomy; the table
// and column of a violation are recovered from the engine message, which is
// the only place SQLite reports them.
package sqlite
