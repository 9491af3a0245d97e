// Package logger provides structured logging for the application.
//
// It builds log/slog JSON loggers at a configured level and carries a
// request-scoped logger through context.Context, so that everything logged
// while serving a request shares the request's trace_id.
package logger
