package telemetry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ledger/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap/zaptest"
)

func disabledMeterProvider(t *testing.T) *telemetry.MeterProvider {
	t.Helper()
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "test-service",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return mp
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    60 * time.Second,
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, mp)

	assert.False(t, mp.IsEnabled())
	assert.False(t, mp.PrometheusEnabled())
	assert.Equal(t, cfg.ServiceName, mp.GetConfig().ServiceName)
	assert.NotNil(t, mp.Meter("test-meter"))
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestNewMeterProvider_NilLogger(t *testing.T) {
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{}, nil)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
}

func TestMeterProvider_HandlerDisabled(t *testing.T) {
	mp := disabledMeterProvider(t)

	w := httptest.NewRecorder()
	mp.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMeterProvider_Prometheus(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		PrometheusEnabled: true,
		ServiceName:       "ledger-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer mp.Shutdown(ctx)

	assert.True(t, mp.IsEnabled())
	assert.True(t, mp.PrometheusEnabled())

	counter, err := telemetry.NewCounter(mp.Meter("test"), "ledger_test_events", "Test events", "{events}")
	require.NoError(t, err)
	counter.Add(ctx, 3, telemetry.AttrEntity.String("supplier"))

	w := httptest.NewRecorder()
	mp.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "ledger_test_events")
	assert.Contains(t, body, `entity="supplier"`)
	assert.Contains(t, body, "go_goroutines")
}

func TestMeterProvider_ShutdownWithCancelledContext(t *testing.T) {
	mp := disabledMeterProvider(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, mp.Shutdown(ctx))
}

func TestCounter(t *testing.T) {
	ctx := context.Background()
	meter := disabledMeterProvider(t).Meter("test")

	counter, err := telemetry.NewCounter(meter, "ledger_requests", "Requests", "{requests}")
	require.NoError(t, err)
	require.NotNil(t, counter)

	counter.Add(ctx, 5)
	counter.Inc(ctx, attribute.String("method", "POST"))
}

func TestHistogram(t *testing.T) {
	ctx := context.Background()
	meter := disabledMeterProvider(t).Meter("test")

	t.Run("custom boundaries", func(t *testing.T) {
		h, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
			Name:        "http_server_request_duration_seconds",
			Description: "HTTP server request duration",
			Unit:        "s",
			Boundaries:  telemetry.HTTPDurationBuckets,
		})
		require.NoError(t, err)

		h.Record(ctx, 0.05, telemetry.AttrHTTPMethod.String("GET"))
		h.RecordDuration(ctx, 120*time.Millisecond, telemetry.AttrHTTPMethod.String("POST"))
	})

	t.Run("default boundaries", func(t *testing.T) {
		h, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
			Name: "ledger_render_seconds",
			Unit: "s",
		})
		require.NoError(t, err)
		h.Record(ctx, 1.5)
	})
}

func TestGauge(t *testing.T) {
	ctx := context.Background()
	meter := disabledMeterProvider(t).Meter("test")

	gauge, err := telemetry.NewGauge(meter, "db_connections", "Open connections", "{connections}")
	require.NoError(t, err)

	gauge.Record(ctx, 10)
	gauge.Record(ctx, 4, telemetry.AttrDBState.String("idle"))
}

func TestCommonAttributes(t *testing.T) {
	assert.Equal(t, "user_id", string(telemetry.AttrUserID))
	assert.Equal(t, "http.method", string(telemetry.AttrHTTPMethod))
	assert.Equal(t, "http.status_code", string(telemetry.AttrHTTPStatusCode))
	assert.Equal(t, "http.route", string(telemetry.AttrHTTPRoute))
	assert.Equal(t, "db.operation", string(telemetry.AttrDBOperation))
	assert.Equal(t, "db.table", string(telemetry.AttrDBTable))
	assert.Equal(t, "entity", string(telemetry.AttrEntity))
	assert.Equal(t, "payment_type", string(telemetry.AttrPaymentType))
}

func TestDefaultBuckets(t *testing.T) {
	assert.Equal(t, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, telemetry.HTTPDurationBuckets)
	assert.Equal(t, []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}, telemetry.DBDurationBuckets)
	assert.IsIncreasing(t, telemetry.RenderDurationBuckets)
}
