// Package postgres provides the PostgreSQL dialect for the repositories in
// internal/store: '$n' placeholders, information_schema catalog lookups,
// TRUNCATE, and the mapping of SQLSTATE codes reported by pgx onto the store
// error taxonomy.
package postgres
