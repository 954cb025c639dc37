// Package domain defines the core domain models for Trainly clients.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a client domain error with a structured error code.
// Codes follow the format TR-<AREA>-<NNNN>.
type DomainError struct {
	Code    string // Error code (e.g., "TR-AUTH-4010")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrInvalidInput indicates credentials or registration fields failed validation
	// before any request was sent.
	ErrInvalidInput = NewDomainError("TR-AUTH-4000", "invalid input")

	// ErrUnauthorized indicates the identity service rejected the credentials or token.
	ErrUnauthorized = NewDomainError("TR-AUTH-4010", "unauthorized")

	// ErrForbidden indicates the token is valid but lacks access.
	ErrForbidden = NewDomainError("TR-AUTH-4030", "forbidden")
)

// ============================================================================
// Session Errors (SESS)
// ============================================================================

var (
	// ErrNotAuthenticated indicates an operation needs a logged-in session.
	ErrNotAuthenticated = NewDomainError("TR-SESS-4011", "not logged in")

	// ErrSessionSuperseded indicates a login or registration finished after a
	// logout it overlapped; its result was discarded.
	ErrSessionSuperseded = NewDomainError("TR-SESS-4090", "session superseded by logout")
)

// ============================================================================
// Identity Service Errors (IDNT)
// ============================================================================

var (
	// ErrIdentityUnavailable indicates the identity service could not be reached
	// or answered with a server-side failure.
	ErrIdentityUnavailable = NewDomainError("TR-IDNT-5030", "identity service unavailable")

	// ErrIdentityResponse indicates the identity service answered with a body
	// the client could not interpret.
	ErrIdentityResponse = NewDomainError("TR-IDNT-5020", "unexpected identity service response")

	// ErrRequestFailed is the generic client-side failure of a request.
	ErrRequestFailed = NewDomainError("TR-IDNT-4000", "request failed")
)

// APIError is a non-2xx answer from the identity service.
//
// Detail holds the server-supplied message (the "detail" field) verbatim and is
// empty when the server sent none.
type APIError struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("identity service returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("identity service returned %d", e.Status)
}

// Is maps HTTP status classes onto the domain sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrIdentityUnavailable:
		return e.Status >= http.StatusInternalServerError
	case ErrInvalidInput:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case ErrRequestFailed:
		return e.Status >= http.StatusBadRequest && e.Status < http.StatusInternalServerError
	}
	return false
}

// DetailOf returns the server-supplied detail message carried by err, or ""
// when err carries none. Validation failures report their own message.
func DetailOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	var de *DomainError
	if errors.As(err, &de) && de.Code == ErrInvalidInput.Code {
		return de.Details
	}
	return ""
}

// IsUnauthorized reports whether err is a 401-class failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
