// Package logger carries request scoped logging fields in the context.
package logger

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type key string

var (
	requestIDCtxKey key = "request_id_context_key"
	browserIDCtxKey key = "browser_id_context_key"
)

// withRequestID creates a new context with a requestID value.
func withRequestID(ctx context.Context, requestID uuid.UUID) context.Context {
	return context.WithValue(ctx, requestIDCtxKey, requestID)
}

func requestIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	val, ok := ctx.Value(requestIDCtxKey).(uuid.UUID)
	return val, ok
}

// WithBrowserID creates a new context with a browserID value.
func WithBrowserID(ctx context.Context, browserID string) context.Context {
	return context.WithValue(ctx, browserIDCtxKey, browserID)
}

func browserIDFromCtx(ctx context.Context) (string, bool) {
	val, ok := ctx.Value(browserIDCtxKey).(string)
	return val, ok
}

// ContextFields checks the context for a set of fields and returns them for
// use in a zap.Logger if they are available.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if requestID, ok := requestIDFromCtx(ctx); ok {
		fields = append(fields, zap.String("request-id", requestID.String()))
	}
	if browserID, ok := browserIDFromCtx(ctx); ok {
		fields = append(fields, zap.String("browser-id", browserID))
	}
	return fields
}

// FromContext decorates logger with the fields found in ctx.
func FromContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	return logger.With(ContextFields(ctx)...)
}

// Middleware extends the incoming request's context with request scoped
// information critical to logging.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := withRequestID(r.Context(), uuid.New())
			r = r.WithContext(ctx)
			next.ServeHTTP(w, r)
		})
	}
}
