// Package errors provides structured error handling with HTTP status code
// mapping for the proxy's login and relay paths.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	// TypeMissingTOTPSecret indicates the upstream demanded a second factor
	// but the account has no TOTP secret configured.
	TypeMissingTOTPSecret ErrorType = "missing_totp_secret"
	// TypeTOTPComputation indicates the TOTP code could not be derived from
	// the configured secret (bad base32, usually).
	TypeTOTPComputation ErrorType = "totp_computation_failed"
	// TypeTOTPVerification indicates the upstream rejected the submitted code.
	TypeTOTPVerification ErrorType = "totp_verification_failed"
	// TypeUpstreamUnreachable indicates a network-level failure during login.
	TypeUpstreamUnreachable ErrorType = "upstream_unreachable"
	// TypePoolEmpty indicates no authenticated session is available (HTTP 500).
	TypePoolEmpty ErrorType = "pool_empty"
	// TypeMissingSessionToken indicates the active session carries no usable
	// auth token (HTTP 401).
	TypeMissingSessionToken ErrorType = "missing_session_token"
	// TypeUpstreamRequest indicates a failure while relaying a proxied
	// request (HTTP 502).
	TypeUpstreamRequest ErrorType = "upstream_request"
	// TypeInternal indicates a server-side error (HTTP 500).
	TypeInternal ErrorType = "internal"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	// StatusCode is the upstream HTTP status associated with the failure,
	// zero when none was received.
	StatusCode int
	Context    map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the status code to surface to an inbound caller.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeMissingSessionToken:
		return http.StatusUnauthorized
	case TypeUpstreamRequest, TypeUpstreamUnreachable:
		return http.StatusBadGateway
	case TypePoolEmpty, TypeTOTPComputation, TypeTOTPVerification, TypeMissingTOTPSecret, TypeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// LoginFailure reports whether the error belongs to the per-account login
// taxonomy. Login failures exclude a single account from the pool and never
// abort startup.
func (e *Error) LoginFailure() bool {
	switch e.Type {
	case TypeMissingTOTPSecret, TypeTOTPComputation, TypeTOTPVerification, TypeUpstreamUnreachable:
		return true
	}
	return false
}

// MissingTOTPSecretError creates an error for an account that needs a second
// factor but has no secret configured.
func MissingTOTPSecretError(username string) *Error {
	return &Error{
		Type:    TypeMissingTOTPSecret,
		Message: "totp required but no secret configured",
		Context: map[string]any{"username": username},
	}
}

// TOTPComputationError creates an error for a secret that cannot produce a code.
func TOTPComputationError(username string, cause error) *Error {
	return &Error{
		Type:    TypeTOTPComputation,
		Message: "failed to compute totp code",
		Cause:   cause,
		Context: map[string]any{"username": username},
	}
}

// TOTPVerificationError creates an error for an upstream-rejected code.
func TOTPVerificationError(username string, cause error) *Error {
	return &Error{
		Type:    TypeTOTPVerification,
		Message: "upstream rejected totp code",
		Cause:   cause,
		Context: map[string]any{"username": username},
	}
}

// UpstreamUnreachableError creates an error for a network-level login failure.
// statusCode is zero when the failure happened before any response arrived.
func UpstreamUnreachableError(username string, statusCode int, cause error) *Error {
	return &Error{
		Type:       TypeUpstreamUnreachable,
		Message:    "upstream unreachable during login",
		Cause:      cause,
		StatusCode: statusCode,
		Context:    map[string]any{"username": username},
	}
}

// PoolEmptyError creates an error for requests arriving before any login succeeded.
func PoolEmptyError() *Error {
	return &Error{
		Type:    TypePoolEmpty,
		Message: "no accounts available",
		Context: make(map[string]any),
	}
}

// MissingSessionTokenError creates an error for a session without an auth token.
func MissingSessionTokenError() *Error {
	return &Error{
		Type:    TypeMissingSessionToken,
		Message: "authentication token not found",
		Context: make(map[string]any),
	}
}

// UpstreamRequestError creates an error for a failed relay call.
func UpstreamRequestError(message string, cause error) *Error {
	return &Error{
		Type:    TypeUpstreamRequest,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// InternalError creates a generic server-side error.
func InternalError(message string, cause error) *Error {
	return &Error{
		Type:    TypeInternal,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// AsStructuredError converts any error into a structured Error.
// If err is already an *Error, returns it unchanged.
// Otherwise wraps it as an internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("internal server error", err)
}
