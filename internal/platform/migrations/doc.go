// Package migrations embeds the SQL schema of the tienda database and applies
// it with goose. The same files serve PostgreSQL and SQLite.
package migrations
