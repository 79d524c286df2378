package logger

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		fallback slog.Level
		expected slog.Level
	}{
		{"debug", slog.LevelInfo, slog.LevelDebug},
		{" INFO ", slog.LevelDebug, slog.LevelInfo},
		{"warn", slog.LevelInfo, slog.LevelWarn},
		{"warning", slog.LevelInfo, slog.LevelWarn},
		{"error", slog.LevelInfo, slog.LevelError},
		{"", slog.LevelInfo, slog.LevelInfo},
		{"verbose", slog.LevelDebug, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input, tt.fallback))
		})
	}
}

func TestNew_Levels(t *testing.T) {
	ctx := context.Background()

	prod := New("production", "")
	assert.False(t, prod.Enabled(ctx, slog.LevelDebug))
	assert.True(t, prod.Enabled(ctx, slog.LevelInfo))
	assert.IsType(t, &slog.JSONHandler{}, prod.Handler())

	dev := New("development", "")
	assert.True(t, dev.Enabled(ctx, slog.LevelDebug))
	assert.IsType(t, &slog.TextHandler{}, dev.Handler())

	quiet := New("production", "error")
	assert.False(t, quiet.Enabled(ctx, slog.LevelWarn))
	assert.True(t, quiet.Enabled(ctx, slog.LevelError))
}

func TestFromContext(t *testing.T) {
	assert.Same(t, Default(), FromContext(context.Background()))
	assert.Same(t, Default(), FromContext(nil)) //nolint:staticcheck // SA1012: nil context is handled

	scoped := Default().With("request_id", "abc")
	ctx := WithContext(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx))
}

func TestSetDefault_IgnoresNil(t *testing.T) {
	before := Default()
	SetDefault(nil)
	assert.Same(t, before, Default())
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen *slog.Logger

	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/ping", func(c *gin.Context) {
		seen = FromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
	require.NotNil(t, seen)
	assert.NotSame(t, Default(), seen, "handlers get a request-scoped logger")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
}
