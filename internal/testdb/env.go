package testdb

import "os"

// Environment variables holding the integration test database URL, in lookup order.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvTestDBURL   = "TIENDA_TEST_DB_URL"
)

// GetTestDatabaseURL returns the database URL for tests.
// It checks DATABASE_URL and TIENDA_TEST_DB_URL environment variables
// in that order, returning the first non-empty value.
func GetTestDatabaseURL() string {
	if dbURL := os.Getenv(EnvDatabaseURL); dbURL != "" {
		return dbURL
	}
	return os.Getenv(EnvTestDBURL)
}

// IsIntegrationTestEnvironment returns true if a PostgreSQL database URL is
// set, indicating that integration tests can be run.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// ShouldSkipDatabaseTest returns true if integration tests against
// PostgreSQL should be skipped.
func ShouldSkipDatabaseTest() bool {
	return !IsIntegrationTestEnvironment()
}
