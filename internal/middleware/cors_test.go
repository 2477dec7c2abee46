package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/lllypuk/threads/internal/middleware"
)

func TestDefaultCORSConfig(t *testing.T) {
	config := middleware.DefaultCORSConfig()

	assert.Equal(t, []string{"*"}, config.AllowOrigins)
	assert.Contains(t, config.AllowMethods, echo.PUT)
	assert.NotContains(t, config.AllowMethods, echo.DELETE)
	assert.Contains(t, config.AllowHeaders, middleware.RequestIDHeader)
	assert.Contains(t, config.ExposeHeaders, "Retry-After")
	assert.False(t, config.AllowCredentials)
}

func TestCORS_Preflight(t *testing.T) {
	e := echo.New()
	e.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	e.POST("/api/v1/threads", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/threads", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.example.com")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodPost)
	assert.Equal(t, "86400", rec.Header().Get(echo.HeaderAccessControlMaxAge))
}

func TestCORSWithOrigins(t *testing.T) {
	e := echo.New()
	e.Use(middleware.CORSWithOrigins("https://app.example.com"))
	e.GET("/api/v1/threads", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/threads", nil)
		req.Header.Set(echo.HeaderOrigin, "https://app.example.com")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "https://app.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
		assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlExposeHeaders), middleware.RequestIDHeader)
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/threads", nil)
		req.Header.Set(echo.HeaderOrigin, "https://evil.example.com")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	})
}
