package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSuccessResponseWithMeta(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		pages    int
	}{
		{0, 20, 0},
		{20, 20, 1},
		{21, 20, 2},
		{5, 0, 0},
	}

	for _, tt := range tests {
		resp := NewSuccessResponseWithMeta([]string{}, tt.total, 1, tt.pageSize)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, tt.pages, resp.Meta.TotalPages)
		assert.True(t, resp.Success)
	}
}

func TestNewConflictResponse_Envelope(t *testing.T) {
	resp := NewConflictResponse("Supplier was modified by another request", "req-1", ConflictData{
		ServerVersion: 4,
		ClientVersion: 3,
		CurrentData:   map[string]any{"name": "North farm", "version": 4},
	})

	body, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"success": false,
		"code": "CONCURRENCY_CONFLICT",
		"conflict": true,
		"message": "Supplier was modified by another request",
		"request_id": "req-1",
		"data": {
			"server_version": 4,
			"client_version": 3,
			"current_data": {"name": "North farm", "version": 4}
		}
	}`, string(body))
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Validation failed", "", map[string][]string{
		"quantity": {"must be greater than 0"},
	})

	body, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"success": false,
		"code": "VALIDATION_ERROR",
		"message": "Validation failed",
		"errors": {"quantity": ["must be greater than 0"]}
	}`, string(body))
}

func TestNewErrorResponse_OmitsEmptyFields(t *testing.T) {
	body, err := json.Marshal(NewErrorResponse(ErrCodeNotFound, "Supplier not found", ""))
	require.NoError(t, err)

	assert.JSONEq(t, `{"success":false,"code":"NOT_FOUND","message":"Supplier not found"}`, string(body))
}
