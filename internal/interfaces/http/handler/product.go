package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ledger/backend/internal/application/catalog"
)

// ProductHandler handles product-related API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalog.ProductService
	rateService    *catalog.RateService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(base BaseHandler, productService *catalog.ProductService, rateService *catalog.RateService) *ProductHandler {
	return &ProductHandler{
		BaseHandler:    base,
		productService: productService,
		rateService:    rateService,
	}
}

// Create godoc
// @ID           createProduct
// @Summary      Create a new product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateProductRequest true "Product creation request"
// @Success      201 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      409 {object} ErrorResponse "Code already in use"
// @Failure      422 {object} ValidationErrorResponse
// @Security     BearerAuth
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalog.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetByID godoc
// @ID           getProduct
// @Summary      Get product by ID
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List godoc
// @ID           listProducts
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        search query string false "Search term"
// @Param        is_active query bool false "Active flag"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(name)
// @Param        order_dir query string false "Order direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]catalog.ProductResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalog.ProductListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	result, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, result)
}

// Update godoc
// @ID           updateProduct
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalog.UpdateProductRequest true "Product update request"
// @Success      200 {object} dto.Response{data=catalog.ProductResponse}
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ConflictResponse
// @Failure      422 {object} ValidationErrorResponse
// @Security     BearerAuth
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req catalog.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @ID           deleteProduct
// @Summary      Delete a product
// @Description  Soft delete. Rates and collections stay in place.
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        version query int false "Expected version"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ConflictResponse
// @Security     BearerAuth
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	version, ok := h.DeleteVersion(c)
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id, version); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Product deleted successfully")
}

// Rates godoc
// @ID           listProductRates
// @Summary      Rate history of a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        unit query string false "Unit"
// @Param        date query string false "Only rates effective on this day (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]catalog.RateResponse,meta=dto.Meta}
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /products/{id}/rates [get]
func (h *ProductHandler) Rates(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var filter catalog.RateListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	result, err := h.productService.Rates(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, result)
}

// CurrentRate godoc
// @ID           getProductCurrentRate
// @Summary      Rate in effect
// @Description  The active rate for a unit on a day. Defaults to the product's default unit and today.
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        unit query string false "Unit"
// @Param        date query string false "Day (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=catalog.RateResponse}
// @Failure      404 {object} ErrorResponse "No rate in effect"
// @Security     BearerAuth
// @Router       /products/{id}/current-rate [get]
func (h *ProductHandler) CurrentRate(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var q catalog.CurrentRateQuery
	if !h.BindQuery(c, &q) {
		return
	}

	rate, err := h.rateService.Current(c.Request.Context(), id, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}
