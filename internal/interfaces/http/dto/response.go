package dto

// Response is the envelope of every JSON response
type Response struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message,omitempty"`
	Code      string              `json:"code,omitempty"`
	Conflict  bool                `json:"conflict,omitempty"`
	Data      any                 `json:"data,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
	Meta      *Meta               `json:"meta,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// ConflictData is the payload of a 409 version conflict. CurrentData is the
// full server-side representation of the entity.
type ConflictData struct {
	ServerVersion int `json:"server_version"`
	ClientVersion int `json:"client_version"`
	CurrentData   any `json:"current_data"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewMessageResponse creates a success response carrying only a message
func NewMessageResponse(message string) Response {
	return Response{
		Success: true,
		Message: message,
	}
}

// NewSuccessResponseWithMeta creates a success response with pagination meta
func NewSuccessResponseWithMeta(data any, total int64, page, pageSize int) Response {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			totalPages++
		}
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message, requestID string) Response {
	return Response{
		Success:   false,
		Code:      code,
		Message:   message,
		RequestID: requestID,
	}
}

// NewValidationErrorResponse creates a 422 body with field-level messages
func NewValidationErrorResponse(message, requestID string, errors map[string][]string) Response {
	return Response{
		Success:   false,
		Code:      ErrCodeValidation,
		Message:   message,
		Errors:    errors,
		RequestID: requestID,
	}
}

// NewConflictResponse creates a 409 body for a stale version
func NewConflictResponse(message, requestID string, data ConflictData) Response {
	return Response{
		Success:   false,
		Code:      ErrCodeConcurrencyConflict,
		Conflict:  true,
		Message:   message,
		Data:      data,
		RequestID: requestID,
	}
}

// IDRequest represents a request with an ID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// VersionQuery carries the optional version guard of a DELETE
type VersionQuery struct {
	Version *int `form:"version" binding:"omitempty,min=1"`
}
