package handler

import (
	"github.com/ledger/backend/internal/domain/identity"
	"github.com/ledger/backend/internal/interfaces/http/dto"
)

// The types below only describe response bodies in the OpenAPI document.

// ErrorResponse is the body of a failed request
// @Description Error envelope
type ErrorResponse struct {
	Success   bool   `json:"success" example:"false"`
	Code      string `json:"code" example:"NOT_FOUND"`
	Message   string `json:"message" example:"Supplier not found"`
	RequestID string `json:"request_id,omitempty" example:"5f0c2a4e-8d3b-4a61-9e1f-2b7c6d8a9e10"`
}

// ValidationErrorResponse is the 422 body
// @Description Field-level validation failure
type ValidationErrorResponse struct {
	Success   bool                `json:"success" example:"false"`
	Code      string              `json:"code" example:"VALIDATION_ERROR"`
	Message   string              `json:"message" example:"The given data was invalid"`
	Errors    map[string][]string `json:"errors"`
	RequestID string              `json:"request_id,omitempty"`
}

// ConflictResponse is the 409 body of a stale update. data.current_data
// holds the entity as currently stored.
// @Description Optimistic concurrency conflict
type ConflictResponse struct {
	Success   bool             `json:"success" example:"false"`
	Conflict  bool             `json:"conflict" example:"true"`
	Code      string           `json:"code" example:"CONCURRENCY_CONFLICT"`
	Message   string           `json:"message"`
	Data      dto.ConflictData `json:"data"`
	RequestID string           `json:"request_id,omitempty"`
}

// MessageResponse is a success without data
// @Description Success message
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Supplier deleted"`
}

// PermissionList is the permission catalogue
type PermissionList []identity.Permission
