package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ledger/backend/internal/application/finance"
)

// PaymentHandler handles payment-related API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *finance.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(base BaseHandler, paymentService *finance.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    base,
		paymentService: paymentService,
	}
}

// Create godoc
// @ID           createPayment
// @Summary      Record a payment
// @Description  Money paid to a supplier. Advance payments may take the balance below zero.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replay protection key"
// @Param        request body finance.CreatePaymentRequest true "Payment creation request"
// @Success      201 {object} dto.Response{data=finance.PaymentResponse}
// @Failure      422 {object} ValidationErrorResponse "Validation failed or unknown supplier"
// @Security     BearerAuth
// @Router       /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req finance.CreatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Metrics.RecordPayment(c.Request.Context(), payment.PaymentType, payment.Amount)
	h.Created(c, payment)
}

// GetByID godoc
// @ID           getPayment
// @Summary      Get payment by ID
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} dto.Response{data=finance.PaymentResponse}
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id} [get]
func (h *PaymentHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// List godoc
// @ID           listPayments
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Param        search query string false "Search reference or notes"
// @Param        supplier_id query string false "Supplier ID" format(uuid)
// @Param        user_id query string false "Recorded by" format(uuid)
// @Param        payment_type query string false "Payment type" Enums(advance, partial, full, adjustment)
// @Param        payment_method query string false "Payment method" Enums(cash, bank_transfer, mobile_money, cheque, other)
// @Param        date_from query string false "First day (YYYY-MM-DD)"
// @Param        date_to query string false "Last day (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]finance.PaymentResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var filter finance.PaymentListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	result, err := h.paymentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(&h.BaseHandler, c, result)
}

// Update godoc
// @ID           updatePayment
// @Summary      Update a payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body finance.UpdatePaymentRequest true "Payment update request"
// @Success      200 {object} dto.Response{data=finance.PaymentResponse}
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ConflictResponse
// @Failure      422 {object} ValidationErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id} [put]
func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req finance.UpdatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// Delete godoc
// @ID           deletePayment
// @Summary      Delete a payment
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        version query int false "Expected version"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ConflictResponse
// @Security     BearerAuth
// @Router       /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	version, ok := h.DeleteVersion(c)
	if !ok {
		return
	}

	if err := h.paymentService.Delete(c.Request.Context(), id, version); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Payment deleted successfully")
}
