package telemetry_test

import (
	"context"
	"testing"

	"github.com/ledger/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     1.0,
		ServiceName:       "ledger-test",
	}

	tp, err := telemetry.NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.Equal(t, cfg, tp.GetConfig())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	ctx := context.Background()
	for _, ratio := range []float64{0, 0.25, 1} {
		tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
			Enabled:           true,
			CollectorEndpoint: "localhost:4317",
			SamplingRatio:     ratio,
			ServiceName:       "ledger-test",
			Insecure:          true,
		}, zaptest.NewLogger(t))
		require.NoError(t, err)

		assert.True(t, tp.IsEnabled())
		_, span := tp.Tracer("test").Start(ctx, "sample")
		span.End()

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_ = tp.Shutdown(cancelled)
	}
}

func TestTracerProvider_EnableSpanProfiles(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled tracing is a no-op", func(t *testing.T) {
		tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{}, zaptest.NewLogger(t))
		require.NoError(t, err)

		require.NoError(t, tp.EnableSpanProfiles())
		assert.False(t, tp.IsSpanProfilesEnabled())
	})

	t.Run("idempotent when enabled", func(t *testing.T) {
		tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
			Enabled:           true,
			CollectorEndpoint: "localhost:4317",
			SamplingRatio:     1,
			ServiceName:       "ledger-test",
			Insecure:          true,
		}, zaptest.NewLogger(t))
		require.NoError(t, err)
		defer func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_ = tp.Shutdown(cancelled)
		}()

		require.NoError(t, tp.EnableSpanProfiles())
		require.NoError(t, tp.EnableSpanProfiles())
		assert.True(t, tp.IsSpanProfilesEnabled())
	})
}
