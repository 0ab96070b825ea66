package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledger/backend/internal/domain/shared"
	"github.com/ledger/backend/internal/infrastructure/logger"
	"github.com/ledger/backend/internal/infrastructure/telemetry"
	"github.com/ledger/backend/internal/interfaces/http/dto"
	"github.com/ledger/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities. The zero value is usable;
// Metrics may be nil.
type BaseHandler struct {
	Metrics *telemetry.BusinessMetrics
}

// NewBaseHandler creates the BaseHandler shared by every resource handler
func NewBaseHandler(metrics *telemetry.BusinessMetrics) BaseHandler {
	return BaseHandler{Metrics: metrics}
}

func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a page of items with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Page sends a paginated result
func Page[T any](h *BaseHandler, c *gin.Context, result *shared.Paginated[T]) {
	items := result.Items
	if items == nil {
		items = []T{}
	}
	h.SuccessWithMeta(c, items, result.Total, result.Page, result.PageSize)
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Message sends a success response without data
func (h *BaseHandler) Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.NewMessageResponse(message))
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// ValidationError sends a 422 with field-level messages
func (h *BaseHandler) ValidationError(c *gin.Context, fields map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(
		"The given data was invalid",
		getRequestID(c),
		fields,
	))
}

// HandleError maps an error returned by an application service onto the
// response envelope:
//   - *shared.VersionConflictError: 409 with conflict=true and the current entity
//   - shared.ValidationErrors: 422 with field messages
//   - *shared.DomainError: status derived from the code, 422 for rule violations
//   - anything else: 500, logged, details withheld
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := getRequestID(c)

	if conflict, ok := shared.AsVersionConflict(err); ok {
		h.Metrics.RecordConflict(c.Request.Context(), conflict.Resource)
		c.JSON(http.StatusConflict, dto.NewConflictResponse(
			conflictMessage(conflict.Resource),
			requestID,
			dto.ConflictData{
				ServerVersion: conflict.ServerVersion,
				ClientVersion: conflict.ClientVersion,
				CurrentData:   conflict.Current,
			},
		))
		return
	}

	var fieldErrs shared.ValidationErrors
	if errors.As(err, &fieldErrs) {
		h.ValidationError(c, fieldErrs)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.DomainErrorStatus(domainErr.Code),
			dto.NewErrorResponse(domainErr.Code, domainErr.Message, requestID))
		return
	}

	logger.GetGinLogger(c).Error("Unhandled error",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

func conflictMessage(resource string) string {
	if resource == "" {
		resource = "Resource"
	}
	return strings.ToUpper(resource[:1]) + resource[1:] +
		" was modified by another request. Reload it and apply your changes again."
}

// BindJSON binds the request body into obj and answers the failure itself.
// It returns false when the handler should stop.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.bindError(c, err, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
		return false
	}
	return true
}

// BindQuery binds query parameters into obj, answering failures itself
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.bindError(c, err, dto.ErrCodeInvalidInput, "Invalid query parameters")
		return false
	}
	return true
}

func (h *BaseHandler) bindError(c *gin.Context, err error, code, message string) {
	if fields, ok := middleware.FieldErrors(err); ok {
		h.ValidationError(c, fields)
		return
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		h.ValidationError(c, map[string][]string{
			typeErr.Field: {"Must be of type " + typeErr.Type.String()},
		})
		return
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge,
			"Request body exceeds maximum allowed size")
		return
	}

	if errors.Is(err, io.EOF) {
		message = "Request body is required"
	}
	h.Error(c, http.StatusBadRequest, code, message)
}

// ParseID reads a UUID path parameter, answering 400 when it is malformed
func (h *BaseHandler) ParseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid "+param+" format")
		return uuid.Nil, false
	}
	return id, true
}

// DeleteVersion reads the optional ?version= guard of a DELETE
func (h *BaseHandler) DeleteVersion(c *gin.Context) (*int, bool) {
	var q dto.VersionQuery
	if !h.BindQuery(c, &q) {
		return nil, false
	}
	return q.Version, true
}

// CurrentUserID returns the authenticated user, answering 401 when absent
func (h *BaseHandler) CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserUUID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}
