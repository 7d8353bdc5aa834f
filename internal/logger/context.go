package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	fieldsKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithFields attaches fields that every FromCtx logger of ctx will carry,
// e.g. the user id resolved by the auth middleware.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	prev, _ := ctx.Value(fieldsKey).([]zap.Field)
	merged := make([]zap.Field, 0, len(prev)+len(fields))
	merged = append(merged, prev...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, fieldsKey, merged)
}

// FromCtx returns the global logger with the request id and any context
// fields added.
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()
	if id := RequestIDFrom(ctx); id != "" {
		l = l.With(zap.String("request_id", id))
	}
	if fields, _ := ctx.Value(fieldsKey).([]zap.Field); len(fields) > 0 {
		l = l.With(fields...)
	}
	return l
}
