package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false}, nil)
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_Validation(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "ledger"}, zap.NewNop())
	assert.ErrorContains(t, err, "server address")

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://pyroscope:4040"}, zap.NewNop())
	assert.ErrorContains(t, err, "application name")

	_, err = NewProfiler(ProfilerConfig{
		Enabled:         true,
		ServerAddress:   "http://pyroscope:4040",
		ApplicationName: "ledger",
		ProfileTypes:    []string{"cpu", "heap"},
	}, zap.NewNop())
	assert.ErrorContains(t, err, `unknown profile type "heap"`)
}

func TestProfileTypes(t *testing.T) {
	types, err := profileTypes(nil)
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU, pyroscope.ProfileAllocSpace, pyroscope.ProfileInuseSpace, pyroscope.ProfileGoroutines,
	}, types)

	types, err = profileTypes([]string{"mutex_count", "block_duration"})
	require.NoError(t, err)
	assert.Len(t, types, 2)
}

func TestSanitizeLabels(t *testing.T) {
	pairs := sanitizeLabels(map[string]string{
		"Route":       "/api/v1/suppliers/:id",
		"user_id":     "u-1",
		"supplier_id": "s-1",
		"empty":       "",
		"op-name":     strings.Repeat("x", 200),
		"!!!":         "dropped",
	})

	assert.Equal(t, []string{"route", "/api/v1/suppliers/:id", "op_name", strings.Repeat("x", MaxLabelValueLength)}, pairs)
	assert.Nil(t, sanitizeLabels(nil))
}

func TestWithProfilingLabels(t *testing.T) {
	var route string
	WithProfilingLabels(context.Background(), HTTPRequestLabels("ReportHandler", "/api/v1/reports/summary", "GET"),
		func(ctx context.Context) {
			route, _ = pprof.Label(ctx, ProfilingLabelRoute)
		})
	assert.Equal(t, "/api/v1/reports/summary", route)

	called := false
	WithProfilingLabels(context.Background(), map[string]string{"user_id": "u-1"}, func(context.Context) {
		called = true
	})
	assert.True(t, called)
}

func TestOperationLabels(t *testing.T) {
	labels := OperationLabels("render_pdf", map[string]string{ProfilingLabelRegion: "chrome", ProfilingLabelOperation: "ignored"})

	assert.Equal(t, "render_pdf", labels[ProfilingLabelOperation])
	assert.Equal(t, "chrome", labels[ProfilingLabelRegion])
	assert.Empty(t, HTTPRequestLabels("", "", ""))
}
