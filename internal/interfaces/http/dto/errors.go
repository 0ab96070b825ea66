package dto

import "net/http"

// Error codes returned in the "code" field of error responses. Domain error
// codes pass through unchanged; these cover failures raised by the HTTP layer.
const (
	ErrCodeInternal            = "INTERNAL_ERROR"
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeTokenExpired        = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid        = "TOKEN_INVALID"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodePayloadTooLarge     = "PAYLOAD_TOO_LARGE"
	ErrCodeTimeout             = "REQUEST_TIMEOUT"
	ErrCodeIdempotencyConflict = "IDEMPOTENCY_KEY_REUSED"
	ErrCodeRequestInProgress   = "REQUEST_IN_PROGRESS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidJSON:         http.StatusBadRequest,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeValidation:          http.StatusUnprocessableEntity,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeTokenExpired:        http.StatusUnauthorized,
	ErrCodeTokenInvalid:        http.StatusUnauthorized,
	"INVALID_CREDENTIALS":      http.StatusUnauthorized,
	ErrCodeForbidden:           http.StatusForbidden,
	"USER_INACTIVE":            http.StatusForbidden,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
	ErrCodePayloadTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeTimeout:             http.StatusGatewayTimeout,
	ErrCodeIdempotencyConflict: http.StatusUnprocessableEntity,
	ErrCodeRequestInProgress:   http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes return 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorStatus returns the status for a domain error code. Codes
// without an explicit mapping are business rule violations (422).
func DomainErrorStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
