package context

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	e := echo.New()

	t.Run("echo value wins", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		SetRequestID(c, "req-1")
		assert.Equal(t, "req-1", RequestID(c))
	})

	t.Run("falls back to request context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithRequestID(req.Context(), "req-2"))
		c := e.NewContext(req, httptest.NewRecorder())
		assert.Equal(t, "req-2", RequestID(c))
	})

	t.Run("generates when absent", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		_, err := uuid.Parse(RequestID(c))
		assert.NoError(t, err)
	})
}

func TestUserIDFromContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = UserIDFromContext(WithUserID(context.Background(), uuid.Nil))
	assert.False(t, ok)

	id := uuid.New()
	got, ok := UserIDFromContext(WithUserID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestLogger(t *testing.T) {
	fallback := slog.Default()
	assert.Same(t, fallback, Logger(context.Background(), fallback))

	scoped := slog.New(slog.DiscardHandler)
	assert.Same(t, scoped, Logger(WithLogger(context.Background(), scoped), fallback))
}
