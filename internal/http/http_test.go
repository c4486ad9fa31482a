package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/banjito/ampcalibration/internal/local"
	ilogger "github.com/banjito/ampcalibration/internal/logger"
	"github.com/banjito/ampcalibration/internal/page"
	"github.com/banjito/ampcalibration/internal/provider"
	"github.com/banjito/ampcalibration/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrProvider(t *testing.T) {
	type expected struct {
		status int
		body   string
	}
	tests := map[string]struct {
		err error
		exp expected
	}{
		"rejected": {
			err: fmt.Errorf("login; error: %w", provider.Error{Status: http.StatusBadRequest, Message: "Invalid login credentials"}),
			exp: expected{status: http.StatusBadRequest, body: "Invalid login credentials"},
		},
		"rate limited": {
			err: provider.Error{Status: http.StatusTooManyRequests, Message: "Too many requests"},
			exp: expected{status: http.StatusTooManyRequests, body: "Too many requests"},
		},
		"provider failure": {
			err: provider.Error{Status: http.StatusServiceUnavailable, Message: "upstream"},
			exp: expected{status: http.StatusBadGateway, body: "The account service is unavailable"},
		},
		"not a provider error": {
			err: errors.New("dial tcp: connection refused"),
			exp: expected{status: http.StatusInternalServerError, body: "An unexpected internal server error occurred"},
		},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			ErrProvider(zap.NewNop(), rr, test.err)

			assert.Equal(t, test.exp.status, rr.Code)
			assert.True(t, strings.HasPrefix(rr.Body.String(), test.exp.body))
		})
	}
}

func TestPage(t *testing.T) {
	factory := page.NewFactory(provider.NewHandle(), session.NewMock(), local.NewMock())
	options := CookieOptions{Secure: true, SameSite: http.SameSiteLaxMode, MaxAge: time.Hour}

	var (
		seen     []string
		tornDown int
	)
	handler := Page(zap.NewNop(), factory, options)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pc := page.FromContext(r.Context())
		require.NotNil(t, pc)
		pc.OnTeardown(func() { tornDown++ })
		seen = append(seen, pc.BrowserID())

		fields := ilogger.ContextFields(r.Context())
		require.Len(t, fields, 1)
		assert.Equal(t, pc.BrowserID(), fields[0].String)
	}))

	t.Run("issues browser identity", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, browserKey, cookies[0].Name)
		assert.Equal(t, seen[0], cookies[0].Value)
		assert.Equal(t, 3600, cookies[0].MaxAge)
		assert.True(t, cookies[0].HttpOnly)
		assert.True(t, cookies[0].Secure)
		assert.Equal(t, 1, tornDown)
	})

	t.Run("reuses browser identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: browserKey, Value: "known-browser"})

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Empty(t, rr.Result().Cookies())
		assert.Equal(t, "known-browser", seen[1])
		assert.Equal(t, 2, tornDown)
	})
}

func TestNavigation(t *testing.T) {
	nav := NewNavigation("/dashboard")
	assert.Equal(t, "/dashboard", nav.Path())

	_, ok := nav.Target()
	assert.False(t, ok)

	nav.Navigate("/login")
	target, ok := nav.Target()
	assert.True(t, ok)
	assert.Equal(t, "/login", target)
}

func TestPace(t *testing.T) {
	tests := map[string]struct {
		min     time.Duration
		handler http.HandlerFunc
		status  int
	}{
		"rejected": {
			min:     50 * time.Millisecond,
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) },
			status:  http.StatusUnauthorized,
		},
		"body without header": {
			min:     50 * time.Millisecond,
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) },
			status:  http.StatusOK,
		},
		"nothing written": {
			min:     50 * time.Millisecond,
			handler: func(w http.ResponseWriter, r *http.Request) {},
			status:  http.StatusOK,
		},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			handler := Pace(test.min)(test.handler)

			start := time.Now()
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))

			assert.GreaterOrEqual(t, int64(time.Since(start)), int64(test.min))
			assert.Equal(t, test.status, rr.Code)
		})
	}
}

func TestPaceCanceled(t *testing.T) {
	handler := Pace(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil).WithContext(ctx))

	assert.Less(t, int64(time.Since(start)), int64(time.Second))
}

func TestLogFormatter(t *testing.T) {
	tests := map[string]struct {
		status int
		level  zapcore.Level
	}{
		"ok":          {status: http.StatusOK, level: zapcore.DebugLevel},
		"redirect":    {status: http.StatusFound, level: zapcore.InfoLevel},
		"rejected":    {status: http.StatusUnauthorized, level: zapcore.WarnLevel},
		"unavailable": {status: http.StatusServiceUnavailable, level: zapcore.ErrorLevel},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)

			router := chi.NewRouter()
			router.Use(middleware.RequestLogger(NewLogFormatter(zap.New(core))))
			router.Get("/v1/users/{id}", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.status)
			})

			req := httptest.NewRequest(http.MethodGet, "/v1/users/1", nil)
			req.AddCookie(&http.Cookie{Name: browserKey, Value: "browser-a"})
			router.ServeHTTP(httptest.NewRecorder(), req)

			entries := logs.FilterMessage("[HTTP Request]").All()
			require.Len(t, entries, 1)
			assert.Equal(t, test.level, entries[0].Level)

			fields := entries[0].ContextMap()
			assert.Equal(t, "/v1/users/{id}", fields["route"])
			assert.Equal(t, "browser-a", fields["browser-id"])
			assert.Equal(t, int64(test.status), fields["status"])
		})
	}
}
