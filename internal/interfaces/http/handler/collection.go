package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ledger/backend/internal/application/trade"
)

// CollectionHandler handles collection-related API endpoints
type CollectionHandler struct {
	BaseHandler
	collectionService *trade.CollectionService
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(base BaseHandler, collectionService *trade.CollectionService) *CollectionHandler {
	return &CollectionHandler{
		BaseHandler:       base,
		collectionService: collectionService,
	}
}

// Create godoc
// @ID           createCollection
// @Summary      Record a collection
// @Description  Prices the quantity with the rate in effect on the collection date and freezes that rate on the record
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replay protection key"
// @Param        request body trade.CreateCollectionRequest true "Collection creation request"
// @Success      201 {object} dto.Response{data=trade.CollectionResponse}
// @Failure      422 {object} ValidationErrorResponse "Validation failed, unknown reference or no rate in effect"
// @Security     BearerAuth
// @Router       /collections [post]
func (h *CollectionHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req trade.CreateCollectionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	collection, err := h.collectionService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Metrics.RecordCollection(c.Request.Context(), collection.Unit, collection.TotalAmount)
	h.Created(c, collection)
}

// GetByID godoc
// @ID           getCollection
// @Summary      Get collection by ID
// @Tags         collections
// @Produce      json
// @Param        id path string true "Collection ID" format(uuid)
// @Success      200 {object} dto.Response{data=trade.CollectionResponse}
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /collections/{id} [get]
func (h *CollectionHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	collection, err := h.collectionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, collection)
}

// List godoc
// @ID           listCollections
// @Summary      List collections
// @Tags         collections
// @Produce      json
// @Param        search query string false "Search notes"
// @Param        supplier_id query string false "Supplier ID" format(uuid)
// @Param        product_id query string false "Product ID" format(uuid)
// @Param        user_id query string false "Recorded by" format(uuid)
// @Param        unit query string false "Unit"
// @Param        date_from query string false "First day (YYYY-MM-DD)"
// @Param        date_to query string false "Last day (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(collection_date)
// @Param        order_dir query string false "Order direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]trade.CollectionResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /collections [get]
func (h *CollectionHandler) List(c *gin.Context) {
	var filter trade.CollectionListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	result, err := h.collectionService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, result)
}

// Update godoc
// @ID           updateCollection
// @Summary      Update a collection
// @Description  Changing the product, unit or date re-resolves the rate; otherwise the frozen rate is kept
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        id path string true "Collection ID" format(uuid)
// @Param        request body trade.UpdateCollectionRequest true "Collection update request"
// @Success      200 {object} dto.Response{data=trade.CollectionResponse}
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ConflictResponse
// @Failure      422 {object} ValidationErrorResponse
// @Security     BearerAuth
// @Router       /collections/{id} [put]
func (h *CollectionHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req trade.UpdateCollectionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	collection, err := h.collectionService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, collection)
}

// Delete godoc
// @ID           deleteCollection
// @Summary      Delete a collection
// @Tags         collections
// @Produce      json
// @Param        id path string true "Collection ID" format(uuid)
// @Param        version query int false "Expected version"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ConflictResponse
// @Security     BearerAuth
// @Router       /collections/{id} [delete]
func (h *CollectionHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	version, ok := h.DeleteVersion(c)
	if !ok {
		return
	}

	if err := h.collectionService.Delete(c.Request.Context(), id, version); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Collection deleted successfully")
}
