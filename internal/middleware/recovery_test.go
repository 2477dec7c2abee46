package middleware_test

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/threads/internal/middleware"
)

func TestRecovery(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		message string
	}{
		{"string panic", "boom", "boom"},
		{"error panic", errors.New("broken tree"), "broken tree"},
		{"int panic", 42, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			e := echo.New()
			e.Use(middleware.Recovery(middleware.RecoveryConfig{
				Logger: slog.New(slog.NewTextHandler(&buf, nil)),
			}))
			e.GET("/panic", func(_ echo.Context) error { panic(tt.value) })

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t,
				`{"success":false,"error":{"code":"INTERNAL_ERROR","message":"An internal error occurred"}}`,
				rec.Body.String())
			assert.Contains(t, buf.String(), "panic recovered")
			assert.Contains(t, buf.String(), tt.message)
			assert.Contains(t, buf.String(), "stack=")
		})
	}
}

func TestRecovery_WithRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	e := echo.New()
	e.Use(middleware.Recovery(middleware.RecoveryConfig{Logger: logger, DisablePrintStack: true}))
	e.Use(middleware.Logging(middleware.LoggingConfig{Logger: logger}))
	e.GET("/panic", func(_ echo.Context) error { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-panic")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "request_id=req-panic")
	assert.NotContains(t, buf.String(), "stack=")
}

func TestRecovery_NoPanic(t *testing.T) {
	e := echo.New()
	e.Use(middleware.Recovery(middleware.DefaultRecoveryConfig()))
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "fine") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fine", rec.Body.String())
}

func TestRecovery_ZeroConfig(t *testing.T) {
	e := echo.New()
	e.Use(middleware.Recovery(middleware.RecoveryConfig{}))
	e.GET("/panic", func(_ echo.Context) error { panic("boom") })

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() { e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil)) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
