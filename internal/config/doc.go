// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, .env files, config files).
// It provides type-safe access to the settings needed by the database
// connection and the logger while keeping credentials out of the code.
package config
