package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/ledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLedger(env *testEnv) {
	env.t.Helper()
	supplier := env.createSupplier("SUP-001")
	product := env.createProduct("MILK", "litre")
	env.createRate(product.ID, "litre", "2", "2026-01-01", "")
	env.createCollection(supplier.ID, product.ID, "2026-02-10", "50", "litre")
}

func TestReportHandler_SummaryPDF(t *testing.T) {
	env := newTestEnv(t)
	seedLedger(env)

	w := env.do(http.MethodGet, "/reports/summary/pdf?from=2026-02-01&to=2026-02-28", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="summary_2026-02-01_2026-02-28.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "%PDF-1.7 summary 100", w.Body.String())
	assert.Equal(t, 1, env.renderer.summaries)
}

func TestReportHandler_StatementPDF(t *testing.T) {
	env := newTestEnv(t)
	seedLedger(env)

	w := env.do(http.MethodGet, "/suppliers", nil)
	suppliers := decodeData[[]struct {
		ID uuid.UUID `json:"id"`
	}](t, w)
	require.Len(t, suppliers, 1)

	w = env.do(http.MethodGet, "/reports/suppliers/"+suppliers[0].ID.String()+"/statement/pdf", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `attachment; filename="statement_sup-001_start_today.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.7 statement SUP-001", w.Body.String())
	assert.Equal(t, []string{"SUP-001"}, env.renderer.statements)
}

func TestReportHandler_StatementPDF_UnknownSupplier(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/reports/suppliers/"+uuid.NewString()+"/statement/pdf", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Code)
	assert.Empty(t, env.renderer.statements)
}

func TestReportHandler_RenderFailure(t *testing.T) {
	env := newTestEnv(t)
	seedLedger(env)
	env.renderer.err = errors.New("chrome crashed")

	w := env.do(http.MethodGet, "/reports/summary/pdf", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeInternal, resp.Code)
	assert.NotContains(t, resp.Message, "chrome")
}

func TestReportHandler_InvalidRange(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		query string
	}{
		{"to before from", "?from=2026-03-01&to=2026-02-01"},
		{"malformed date", "?from=March"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodGet, "/reports/summary"+tt.query, nil)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
			assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Code)
		})
	}
	assert.Zero(t, env.renderer.summaries)
}
