// Package database opens the single connection the repositories share and
// picks the SQL dialect that matches the configured driver.
package database
