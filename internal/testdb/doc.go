// Package testdb provides utilities for database tests.
//
// Most tests run against a private in-memory SQLite database opened with
// OpenSQLite, so they need no server. Tests that exercise PostgreSQL call
// OpenPostgres, which skips the test unless a database URL is configured:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.OpenPostgres(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        // changes are rolled back when fn returns
//	    })
//	}
//
// # Environment Variables
//
// DATABASE_URL or TIENDA_TEST_DB_URL (checked in that order) name the
// PostgreSQL database used by integration tests. Schemas are created with the
// embedded migrations and reset when the test ends.
package testdb
