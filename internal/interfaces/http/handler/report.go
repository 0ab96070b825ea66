package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	reportapp "github.com/ledger/backend/internal/application/report"
)

// ReportHandler serves ledger summaries, balances and PDF exports
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(base BaseHandler, reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   base,
		reportService: reportService,
	}
}

// Summary godoc
// @ID           getReportSummary
// @Summary      Ledger summary
// @Description  Totals, per-supplier balances and per-product quantities for a date range
// @Tags         reports
// @Produce      json
// @Param        from query string false "First day (YYYY-MM-DD)"
// @Param        to query string false "Last day (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=reportapp.SummaryResponse}
// @Failure      422 {object} ValidationErrorResponse
// @Security     BearerAuth
// @Router       /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	var q reportapp.RangeQuery
	if !h.BindQuery(c, &q) {
		return
	}

	summary, err := h.reportService.Summary(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// SupplierBalances godoc
// @ID           listSupplierBalances
// @Summary      Supplier balances
// @Tags         reports
// @Produce      json
// @Param        from query string false "First day (YYYY-MM-DD)"
// @Param        to query string false "Last day (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]reportapp.SupplierBalanceResponse}
// @Failure      422 {object} ValidationErrorResponse
// @Security     BearerAuth
// @Router       /reports/supplier-balances [get]
func (h *ReportHandler) SupplierBalances(c *gin.Context) {
	var q reportapp.RangeQuery
	if !h.BindQuery(c, &q) {
		return
	}

	balances, err := h.reportService.SupplierBalances(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balances)
}

// SummaryPDF godoc
// @ID           exportReportSummary
// @Summary      Ledger summary as PDF
// @Description  Streams the PDF, or returns a download link when report archiving is enabled
// @Tags         reports
// @Produce      application/pdf
// @Produce      json
// @Param        from query string false "First day (YYYY-MM-DD)"
// @Param        to query string false "Last day (YYYY-MM-DD)"
// @Success      200 {file} binary
// @Success      201 {object} dto.Response{data=reportapp.ExportResult} "Archived"
// @Failure      422 {object} ValidationErrorResponse
// @Security     BearerAuth
// @Router       /reports/summary/pdf [get]
func (h *ReportHandler) SummaryPDF(c *gin.Context) {
	var q reportapp.RangeQuery
	if !h.BindQuery(c, &q) {
		return
	}

	start := time.Now()
	result, err := h.reportService.SummaryPDF(c.Request.Context(), q)
	h.Metrics.RecordReportExport(c.Request.Context(), "summary", time.Since(start), err)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendExport(c, result)
}

// StatementPDF godoc
// @ID           exportSupplierStatement
// @Summary      Supplier statement as PDF
// @Tags         reports
// @Produce      application/pdf
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Param        from query string false "First day (YYYY-MM-DD)"
// @Param        to query string false "Last day (YYYY-MM-DD)"
// @Success      200 {file} binary
// @Success      201 {object} dto.Response{data=reportapp.ExportResult} "Archived"
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ValidationErrorResponse
// @Security     BearerAuth
// @Router       /reports/suppliers/{id}/statement/pdf [get]
func (h *ReportHandler) StatementPDF(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var q reportapp.RangeQuery
	if !h.BindQuery(c, &q) {
		return
	}

	start := time.Now()
	result, err := h.reportService.StatementPDF(c.Request.Context(), id, q)
	h.Metrics.RecordReportExport(c.Request.Context(), "statement", time.Since(start), err)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendExport(c, result)
}

func (h *ReportHandler) sendExport(c *gin.Context, result *reportapp.ExportResult) {
	if result.Archived() {
		h.Created(c, result)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
