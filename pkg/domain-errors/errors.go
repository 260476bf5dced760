// Package domainerrors defines the tagged error type shared by services and
// transport. Services return DomainError values; handlers map codes to HTTP
// statuses without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for transport mapping.
type Code string

const (
	CodeBadRequest Code = "BAD_REQUEST"
	CodeValidation Code = "VALIDATION_FAILED"
	CodeConflict   Code = "USER_EXISTS"
	CodeNotFound   Code = "NOT_FOUND"
	CodeInternal   Code = "INTERNAL_ERROR"
)

// DomainError carries a code, a human-readable message, and an optional
// field→message map. The same shape serves structural validation, policy
// rejections, and uniqueness conflicts so independent checks can merge their
// findings into one response.
type DomainError struct {
	Code    Code
	Message string
	Fields  map[string]string
	cause   error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error { return e.cause }

// New constructs a DomainError with no field detail.
func New(code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewValidation constructs a validation error from a field→message map.
// The map is carried as-is; callers own merging before construction.
func NewValidation(fields map[string]string) *DomainError {
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

// NewConflict constructs a uniqueness-conflict error from a field→message map.
func NewConflict(fields map[string]string) *DomainError {
	return &DomainError{
		Code:    CodeConflict,
		Message: "user already exists",
		Fields:  fields,
	}
}

// Wrap attaches a code and message to an underlying cause. The cause is
// preserved for logging but never serialized to clients.
func Wrap(err error, code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, cause: err}
}

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code Code) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// FieldErrors returns the field→message map of err, or nil when err is not a
// DomainError or carries no field detail.
func FieldErrors(err error) map[string]string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}

// ToHTTPStatus maps an error code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
