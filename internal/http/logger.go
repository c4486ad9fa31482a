package http

import (
	"net/http"
	"time"

	ilogger "github.com/banjito/ampcalibration/internal/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewLogFormatter creates a middleware.LogFormatter that writes access logs
// to logger.
func NewLogFormatter(logger *zap.Logger) *LogFormatter {
	return &LogFormatter{logger: logger}
}

type LogFormatter struct{ logger *zap.Logger }

func (f LogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	fields := append(
		ilogger.ContextFields(r.Context()),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	return &logEntry{logger: f.logger.With(fields...), req: r}
}

type logEntry struct {
	logger *zap.Logger
	req    *http.Request
}

func (e *logEntry) Write(
	status, bytes int,
	_ http.Header,
	elapsed time.Duration,
	_ interface{},
) {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.Int("bytes", bytes),
		zap.Duration("elapsed", elapsed),
	}
	// the route is only known once the router has matched the request
	if rctx := chi.RouteContext(e.req.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			fields = append(fields, zap.String("route", pattern))
		}
	}
	if id := BrowserFromRequest(e.req); id != "" {
		fields = append(fields, zap.String("browser-id", id))
	}

	switch {
	case status == http.StatusSwitchingProtocols, status < http.StatusMultipleChoices:
		e.logger.Debug("[HTTP Request]", fields...)
	case status < http.StatusBadRequest:
		e.logger.Info("[HTTP Request]", fields...)
	case status < http.StatusInternalServerError:
		e.logger.Warn("[HTTP Request]", fields...)
	default:
		e.logger.Error("[HTTP Request]", fields...)
	}
}

func (e *logEntry) Panic(v interface{}, stack []byte) {
	e.logger.Error(
		"[HTTP Panic]",
		zap.Any("v", v),
		zap.ByteString("stack", stack),
	)
}
