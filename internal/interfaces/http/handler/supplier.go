package handler

import (
	"github.com/gin-gonic/gin"
	partnerapp "github.com/ledger/backend/internal/application/partner"
	reportapp "github.com/ledger/backend/internal/application/report"
)

// SupplierHandler handles supplier-related API endpoints
type SupplierHandler struct {
	BaseHandler
	supplierService *partnerapp.SupplierService
	reportService   *reportapp.ReportService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(base BaseHandler, supplierService *partnerapp.SupplierService, reportService *reportapp.ReportService) *SupplierHandler {
	return &SupplierHandler{
		BaseHandler:     base,
		supplierService: supplierService,
		reportService:   reportService,
	}
}

// Create godoc
// @ID           createSupplier
// @Summary      Create a new supplier
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        request body partnerapp.CreateSupplierRequest true "Supplier creation request"
// @Success      201 {object} dto.Response{data=partnerapp.SupplierResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Code already in use"
// @Failure      422 {object} ValidationErrorResponse
// @Security     BearerAuth
// @Router       /suppliers [post]
func (h *SupplierHandler) Create(c *gin.Context) {
	var req partnerapp.CreateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// GetByID godoc
// @ID           getSupplier
// @Summary      Get supplier by ID
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      200 {object} dto.Response{data=partnerapp.SupplierResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /suppliers/{id} [get]
func (h *SupplierHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	supplier, err := h.supplierService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// List godoc
// @ID           listSuppliers
// @Summary      List suppliers
// @Description  Paginated suppliers, searchable by code, name or contact person
// @Tags         suppliers
// @Produce      json
// @Param        search query string false "Search term"
// @Param        region query string false "Region"
// @Param        is_active query bool false "Active flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(name)
// @Param        order_dir query string false "Order direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]partnerapp.SupplierResponse,meta=dto.Meta}
// @Failure      422 {object} ValidationErrorResponse
// @Security     BearerAuth
// @Router       /suppliers [get]
func (h *SupplierHandler) List(c *gin.Context) {
	var filter partnerapp.SupplierListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	result, err := h.supplierService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, result)
}

// Update godoc
// @ID           updateSupplier
// @Summary      Update a supplier
// @Description  Apply a partial update guarded by the version the client last read
// @Tags         suppliers
// @Accept       json
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Param        request body partnerapp.UpdateSupplierRequest true "Supplier update request"
// @Success      200 {object} dto.Response{data=partnerapp.SupplierResponse}
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ConflictResponse
// @Failure      422 {object} ValidationErrorResponse
// @Security     BearerAuth
// @Router       /suppliers/{id} [put]
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req partnerapp.UpdateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	supplier, err := h.supplierService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Delete godoc
// @ID           deleteSupplier
// @Summary      Delete a supplier
// @Description  Soft delete. Collections and payments stay on the ledger.
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Param        version query int false "Expected version"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ConflictResponse
// @Security     BearerAuth
// @Router       /suppliers/{id} [delete]
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	version, ok := h.DeleteVersion(c)
	if !ok {
		return
	}

	if err := h.supplierService.Delete(c.Request.Context(), id, version); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Supplier deleted successfully")
}

// Balance godoc
// @ID           getSupplierBalance
// @Summary      Supplier balance
// @Description  Total collected, total paid and outstanding balance of one supplier
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Success      200 {object} dto.Response{data=reportapp.SupplierBalanceResponse}
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /suppliers/{id}/balance [get]
func (h *SupplierHandler) Balance(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	balance, err := h.reportService.SupplierBalance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// Statement godoc
// @ID           getSupplierStatement
// @Summary      Supplier statement
// @Description  Chronological collections and payments with a running balance
// @Tags         suppliers
// @Produce      json
// @Param        id path string true "Supplier ID" format(uuid)
// @Param        from query string false "First day (YYYY-MM-DD)"
// @Param        to query string false "Last day (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=reportapp.StatementResponse}
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ValidationErrorResponse
// @Security     BearerAuth
// @Router       /suppliers/{id}/statement [get]
func (h *SupplierHandler) Statement(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var q reportapp.RangeQuery
	if !h.BindQuery(c, &q) {
		return
	}

	statement, err := h.reportService.Statement(c.Request.Context(), id, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, statement)
}
