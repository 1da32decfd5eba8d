package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomline/loomline-backend-go/apperr"
)

func metricsContext(t *testing.T, path string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	return c
}

func TestMetricsMiddlewareRecordsEchoErrorStatus(t *testing.T) {
	c := metricsContext(t, "/metrics-test-echo-error")
	handler := MetricsMiddleware()(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "no such route")
	})

	require.Error(t, handler(c))

	count := testutil.ToFloat64(requestsTotal.WithLabelValues(http.MethodGet, "/metrics-test-echo-error", "404"))
	assert.Equal(t, 1.0, count, "echo HTTPError recorded with its own code, not 500")
}

func TestMetricsMiddlewareRecordsTaxonomyStatus(t *testing.T) {
	c := metricsContext(t, "/metrics-test-taxonomy")
	handler := MetricsMiddleware()(func(c echo.Context) error {
		return apperr.Auth("no session")
	})

	require.Error(t, handler(c))

	count := testutil.ToFloat64(requestsTotal.WithLabelValues(http.MethodGet, "/metrics-test-taxonomy", "401"))
	assert.Equal(t, 1.0, count)
}
