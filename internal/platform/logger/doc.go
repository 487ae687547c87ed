// Package logger configures the process-wide slog JSON logger and carries
// request-scoped loggers, tagged with a trace ID, through a context.Context.
package logger
