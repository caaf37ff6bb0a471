// Package logger builds the application's structured logger on top of
// log/slog, with JSON output in production and text output elsewhere.
package logger
