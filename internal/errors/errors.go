package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Mill error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrNoMatch        ErrorCode = "NO_MATCH"        // 404 (pack/asset lookup miss, non-fatal)
	ErrTransport      ErrorCode = "TRANSPORT"       // 502 (network unreachable or non-2xx)
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// MillError represents a structured error with code, status, and details.
type MillError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *MillError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *MillError {
	return &MillError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a resource that cannot be located.
func NewNotFound(identifier string) *MillError {
	return &MillError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewNoMatch creates a 404 error for a reference that matches no known pack
// or asset. Resolution misses are reported to the user, never fatal.
func NewNoMatch(reference string) *MillError {
	return &MillError{
		Code:    ErrNoMatch,
		Status:  404,
		Message: fmt.Sprintf("no pack or asset matches %q", reference),
		Details: map[string]any{"reference": reference},
	}
}

// NewTransport creates a 502 error for a failed exchange with the catalog
// service or storage backend.
func NewTransport(url string, err error) *MillError {
	msg := fmt.Sprintf("request to %s failed", url)
	if err != nil {
		msg = fmt.Sprintf("request to %s failed: %v", url, err)
	}
	return &MillError{
		Code:    ErrTransport,
		Status:  502,
		Message: msg,
		Details: map[string]any{"url": url},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *MillError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &MillError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a MillError with the given code.
func Is(err error, code ErrorCode) bool {
	var mErr *MillError
	if stderrors.As(err, &mErr) {
		return mErr.Code == code
	}
	return false
}
