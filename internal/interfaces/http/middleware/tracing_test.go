package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.Failf(t, "span not found", "no ended span named %q", name)
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false, ServiceName: "test"}))
	router.GET("/api/v1/suppliers", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/suppliers", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracingWithConfig_SpanNamedAfterRoute(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing())
	router.GET("/api/v1/suppliers/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/suppliers/42", nil))

	findSpan(t, sr, "GET /api/v1/suppliers/:id")
}

func TestTracingWithConfig_SkipPaths(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Empty(t, sr.Ended())
}

func TestTracingAttributeInjector(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(RequestID(), Tracing())
	router.Use(func(c *gin.Context) {
		c.Set(JWTUserIDKey, "0b7c8a9e-3f1d-4c55-9a62-8e2f4d1b7a10")
		c.Next()
	})
	router.Use(TracingAttributeInjector())
	router.GET("/api/v1/payments", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	router.ServeHTTP(httptest.NewRecorder(), req)

	span := findSpan(t, sr, "GET /api/v1/payments")
	requestID, ok := spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-123", requestID.AsString())
	userID, ok := spanAttr(span, "user_id")
	require.True(t, ok)
	assert.Equal(t, "0b7c8a9e-3f1d-4c55-9a62-8e2f4d1b7a10", userID.AsString())
}

func TestTracingAttributeInjector_WithNoSpan(t *testing.T) {
	router := gin.New()
	router.Use(TracingAttributeInjector())
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantCode   codes.Code
		wantStatus string
	}{
		{"conflict", http.StatusConflict, codes.Error, "Conflict"},
		{"validation", http.StatusUnprocessableEntity, codes.Error, "Validation Failed"},
		{"not found", http.StatusNotFound, codes.Error, "Not Found"},
		{"bad request", http.StatusBadRequest, codes.Error, "Client Error"},
		{"server error", http.StatusBadGateway, codes.Error, "Internal Server Error"},
		{"success", http.StatusCreated, codes.Unset, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := setupTestTracer(t)

			router := gin.New()
			router.Use(Tracing(), SpanErrorMarker())
			router.POST("/api/v1/collections", func(c *gin.Context) { c.Status(tt.status) })

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/collections", nil))

			span := findSpan(t, sr, "POST /api/v1/collections")
			if tt.wantCode == codes.Error {
				assert.Equal(t, codes.Error, span.Status().Code)
				if tt.status < http.StatusInternalServerError {
					assert.Equal(t, tt.wantStatus, span.Status().Description)
				}
			} else {
				assert.NotEqual(t, codes.Error, span.Status().Code)
			}
		})
	}
}
