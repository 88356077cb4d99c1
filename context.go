package rolodex

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	loggerCtxKey ctxKey = iota
	requestBodyCtxKey
	recordCtxKey
)

// GetLoggerFromContext returns the structured logger from the context. It
// expects to use an HTTP request context to get a logger with details from
// middleware, falling back to the default logger
func GetLoggerFromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerCtxKey).(*slog.Logger)
	if !ok {
		return slog.Default()
	}

	return logger
}

// NewContextWithLogger stores a structured logger in the context
func NewContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

// GetRequestBodyFromContext gets the decoded Record request body stored by the
// request body middleware
func GetRequestBodyFromContext(ctx context.Context) (*Record, bool) {
	value, ok := ctx.Value(requestBodyCtxKey).(*Record)
	if !ok {
		return nil, false
	}
	return value, true
}

func newContextWithRequestBody(ctx context.Context, record *Record) context.Context {
	return context.WithValue(ctx, requestBodyCtxKey, record)
}

// GetRecordFromContext gets the requested Record stored by the record-exists
// middleware. It can only be used in URL paths that include the last name
func GetRecordFromContext(ctx context.Context) (*Record, bool) {
	value, ok := ctx.Value(recordCtxKey).(*Record)
	if !ok {
		return nil, false
	}
	return value, true
}

func newContextWithRecord(ctx context.Context, record *Record) context.Context {
	return context.WithValue(ctx, recordCtxKey, record)
}
