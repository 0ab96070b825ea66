package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ledger/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectMetricNames(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestHTTPMetricsWithMeter(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	router := gin.New()
	router.Use(HTTPMetricsWithMeter(provider.Meter("test"), nil))
	router.POST("/api/v1/suppliers/:id", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"id": c.Param("id")})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/suppliers/42", strings.NewReader(`{"name":"North farm"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	metrics := collectMetricNames(t, reader)
	require.Contains(t, metrics, "http_server_request_total")
	assert.Contains(t, metrics, "http_server_request_duration_seconds")
	assert.Contains(t, metrics, "http_server_request_size_bytes")
	assert.Contains(t, metrics, "http_server_response_size_bytes")
	assert.Contains(t, metrics, "http_server_active_requests")

	sum := metrics["http_server_request_total"].Data.(metricdata.Sum[int64])
	routes := map[string]bool{}
	for _, dp := range sum.DataPoints {
		route, _ := dp.Attributes.Value(telemetry.AttrHTTPRoute)
		routes[route.AsString()] = true
	}
	assert.True(t, routes["/api/v1/suppliers/:id"])
	assert.True(t, routes["unknown"])
}

func TestHTTPMetrics_DisabledPassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(HTTPMetrics(HTTPMetricsConfig{Enabled: false}))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", StatusClass(http.StatusCreated))
	assert.Equal(t, "3xx", StatusClass(http.StatusFound))
	assert.Equal(t, "4xx", StatusClass(http.StatusConflict))
	assert.Equal(t, "5xx", StatusClass(http.StatusGatewayTimeout))
	assert.Equal(t, "other", StatusClass(100))
}
