// Package logger provides structured logging for the application on top of
// log/slog, plus helpers for carrying a request-scoped logger through a
// context.Context.
package logger
