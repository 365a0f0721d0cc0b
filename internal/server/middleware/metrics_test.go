package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func makeRequest(e *echo.Echo, method, path string) {
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, path, nil))
}

func clearRegisteredMetrics(t *testing.T, conf MetricsConfig) {
	_, err := registerHttpMetrics(conf)
	if err == nil {
		return
	}
	if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
		httpMetrics := are.ExistingCollector.(*prometheus.HistogramVec)
		httpMetrics.Reset()
		return
	}
	t.Errorf("unexpected error %v", err)
}

func TestPrometheusMiddleware(t *testing.T) {
	clearRegisteredMetrics(t, DefaultMetricsConfig)
	e := echo.New()
	e.Use(Metrics())

	e.GET("/v1/deck", func(c echo.Context) error {
		return c.String(http.StatusOK, "deck")
	})
	e.POST("/v1/products/:id/generate", func(c echo.Context) error {
		return c.NoContent(http.StatusAccepted)
	})
	e.GET("/v1/products/:id/generation", func(c echo.Context) error {
		return fmt.Errorf("state store unavailable")
	})

	for i := 0; i < 100; i++ {
		makeRequest(e, http.MethodGet, "/v1/deck")
	}
	for i := 0; i < 40; i++ {
		// distinct ids collapse into the route path
		makeRequest(e, http.MethodPost, fmt.Sprintf("/v1/products/p%d/generate", i))
	}
	for i := 0; i < 7; i++ {
		makeRequest(e, http.MethodGet, "/v1/products/A/generation")
	}
	for i := 0; i < 69; i++ {
		makeRequest(e, http.MethodGet, fmt.Sprintf("/unknown/%d", i))
	}
	makeRequest(e, http.MethodPost, "/unknown")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, `request_duration_seconds_count{code="200",method="GET",path="/v1/deck"} 100`)
	assert.Contains(t, body, `request_duration_seconds_count{code="202",method="POST",path="/v1/products/:id/generate"} 40`)
	assert.Contains(t, body, `request_duration_seconds_count{code="500",method="GET",path="/v1/products/:id/generation"} 7`)
	assert.Contains(t, body, `request_duration_seconds_count{code="404",method="GET",path="/not-found"} 69`)
	assert.Contains(t, body, `request_duration_seconds_count{code="404",method="POST",path="/not-found"} 1`)
}

func TestNormalizeHTTPStatus(t *testing.T) {
	assert.Equal(t, "1xx", normalizeHTTPStatus(101))
	assert.Equal(t, "2xx", normalizeHTTPStatus(202))
	assert.Equal(t, "3xx", normalizeHTTPStatus(304))
	assert.Equal(t, "4xx", normalizeHTTPStatus(409))
	assert.Equal(t, "5xx", normalizeHTTPStatus(502))
}
