package http

import (
	"context"
	"net/http"
	"time"
)

// Pace delays the response of each request until at least min has passed
// since the request arrived, so that a rejected sign-in answers no faster than
// an accepted one. The wait is abandoned if the request's context is done. A
// min of zero disables pacing.
func Pace(min time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if min <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pw := &pacedWriter{
				ResponseWriter: w,
				ctx:            r.Context(),
				end:            time.Now().Add(min),
			}
			next.ServeHTTP(pw, r)
			// handlers that write nothing still answer after min
			pw.wait()
		})
	}
}

type pacedWriter struct {
	http.ResponseWriter

	ctx    context.Context
	end    time.Time
	waited bool
}

func (w *pacedWriter) WriteHeader(statusCode int) {
	w.wait()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *pacedWriter) Write(b []byte) (int, error) {
	w.wait()
	return w.ResponseWriter.Write(b)
}

func (w *pacedWriter) wait() {
	if w.waited {
		return
	}
	w.waited = true

	remaining := time.Until(w.end)
	if remaining <= 0 {
		return
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-w.ctx.Done():
	}
}
