// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured
// logging (JSON or text) with configurable log levels, and carries loggers
// through context.Context so that each run can attach a correlation ID.
package logger
