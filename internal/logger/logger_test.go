package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextFields(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, ContextFields(context.Background()))
	})

	t.Run("browser", func(t *testing.T) {
		ctx := WithBrowserID(context.Background(), "browser")
		assert.Equal(t, []zap.Field{zap.String("browser-id", "browser")}, ContextFields(ctx))
	})
}

func TestMiddleware(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	var ids []string
	handler := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithBrowserID(r.Context(), "browser")
		FromContext(ctx, zap.New(core)).Info("handled")
	}))

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	for _, entry := range entries {
		fields := entry.ContextMap()
		assert.Equal(t, "browser", fields["browser-id"])
		require.NotEmpty(t, fields["request-id"])
		ids = append(ids, fields["request-id"].(string))
	}
	assert.NotEqual(t, ids[0], ids[1])
}
