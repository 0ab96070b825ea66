package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ledger/backend/internal/application/catalog"
)

// RateHandler handles rate-related API endpoints
type RateHandler struct {
	BaseHandler
	rateService *catalog.RateService
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(base BaseHandler, rateService *catalog.RateService) *RateHandler {
	return &RateHandler{
		BaseHandler: base,
		rateService: rateService,
	}
}

// Create godoc
// @ID           createRate
// @Summary      Create a rate
// @Description  A new price per unit for a product. Active rates of one product and unit may not overlap.
// @Tags         rates
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateRateRequest true "Rate creation request"
// @Success      201 {object} dto.Response{data=catalog.RateResponse}
// @Failure      422 {object} ValidationErrorResponse "Validation failed, unknown product or overlapping rate"
// @Security     BearerAuth
// @Router       /rates [post]
func (h *RateHandler) Create(c *gin.Context) {
	var req catalog.CreateRateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rate, err := h.rateService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rate)
}

// GetByID godoc
// @ID           getRate
// @Summary      Get rate by ID
// @Tags         rates
// @Produce      json
// @Param        id path string true "Rate ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalog.RateResponse}
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rates/{id} [get]
func (h *RateHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	rate, err := h.rateService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}

// List godoc
// @ID           listRates
// @Summary      List rates
// @Tags         rates
// @Produce      json
// @Param        product_id query string false "Product ID" format(uuid)
// @Param        unit query string false "Unit"
// @Param        is_active query bool false "Active flag"
// @Param        date query string false "Only rates effective on this day (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]catalog.RateResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /rates [get]
func (h *RateHandler) List(c *gin.Context) {
	var filter catalog.RateListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	result, err := h.rateService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, result)
}

// Update godoc
// @ID           updateRate
// @Summary      Update a rate
// @Description  Existing collections keep the rate they were priced with
// @Tags         rates
// @Accept       json
// @Produce      json
// @Param        id path string true "Rate ID" format(uuid)
// @Param        request body catalog.UpdateRateRequest true "Rate update request"
// @Success      200 {object} dto.Response{data=catalog.RateResponse}
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ConflictResponse
// @Failure      422 {object} ValidationErrorResponse
// @Security     BearerAuth
// @Router       /rates/{id} [put]
func (h *RateHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req catalog.UpdateRateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rate, err := h.rateService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}

// Delete godoc
// @ID           deleteRate
// @Summary      Delete a rate
// @Tags         rates
// @Produce      json
// @Param        id path string true "Rate ID" format(uuid)
// @Param        version query int false "Expected version"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ConflictResponse
// @Security     BearerAuth
// @Router       /rates/{id} [delete]
func (h *RateHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	version, ok := h.DeleteVersion(c)
	if !ok {
		return
	}

	if err := h.rateService.Delete(c.Request.Context(), id, version); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Rate deleted successfully")
}
