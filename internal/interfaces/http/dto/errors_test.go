package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeValidation, http.StatusUnprocessableEntity},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{"INVALID_CREDENTIALS", http.StatusUnauthorized},
		{"USER_INACTIVE", http.StatusForbidden},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeIdempotencyConflict, http.StatusUnprocessableEntity},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestDomainErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, DomainErrorStatus(ErrCodeNotFound))
	assert.Equal(t, http.StatusConflict, DomainErrorStatus(ErrCodeAlreadyExists))
	assert.Equal(t, http.StatusUnprocessableEntity, DomainErrorStatus("RATE_NOT_FOUND_FOR_DATE"))
	assert.Equal(t, http.StatusUnprocessableEntity, DomainErrorStatus("INVALID_QUANTITY"))
}
