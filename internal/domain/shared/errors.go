package shared

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped copies still compare equal
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrValidation          = NewDomainError("VALIDATION_ERROR", "The given data was invalid")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInvalidReference    = NewDomainError("INVALID_REFERENCE", "Referenced record does not exist")
)

// ValidationErrors collects field-level validation messages.
type ValidationErrors map[string][]string

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) ValidationErrors {
	v := ValidationErrors{}
	v.Add(field, message)
	return v
}

// Add appends a message for the given field
func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

// HasErrors reports whether any message was collected
func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

// Err returns v as an error, or nil when it is empty
func (v ValidationErrors) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

// Error implements the error interface
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(v[field], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) hold for field errors
func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// VersionConflictError is returned when an update carries a version that no
// longer matches the stored one. Current holds the full server-side state.
type VersionConflictError struct {
	Resource      string
	ClientVersion int
	ServerVersion int
	Current       any
}

// Error implements the error interface
func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("%s was modified by another process (client version %d, server version %d)",
		e.Resource, e.ClientVersion, e.ServerVersion)
}

// Is makes errors.Is(err, ErrConcurrencyConflict) hold for conflicts
func (e *VersionConflictError) Is(target error) bool {
	return target == ErrConcurrencyConflict
}

// NewVersionConflictError creates a conflict error carrying the current entity
func NewVersionConflictError(resource string, clientVersion, serverVersion int, current any) *VersionConflictError {
	return &VersionConflictError{
		Resource:      resource,
		ClientVersion: clientVersion,
		ServerVersion: serverVersion,
		Current:       current,
	}
}

// AsVersionConflict unwraps err into a VersionConflictError
func AsVersionConflict(err error) (*VersionConflictError, bool) {
	var conflict *VersionConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}

// MapConflict rewrites the Current payload of a conflict error, leaving any
// other error untouched. Application services use it to expose their own
// response type instead of the domain entity.
func MapConflict[T any, R any](err error, mapFn func(*T) R) error {
	conflict, ok := AsVersionConflict(err)
	if !ok {
		return err
	}
	entity, ok := conflict.Current.(*T)
	if !ok {
		return err
	}
	return NewVersionConflictError(conflict.Resource, conflict.ClientVersion, conflict.ServerVersion, mapFn(entity))
}
