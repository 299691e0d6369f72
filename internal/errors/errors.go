// FilePath: internal/errors/errors.go
package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Error types
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeMissingField  ErrorType = "missing_field"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeNoGas         ErrorType = "no_gas"
	ErrorTypeRateLimit     ErrorType = "rate_limit"
	ErrorTypeRejected      ErrorType = "submission_rejected"
	ErrorTypeTransport     ErrorType = "transport"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeInternal      ErrorType = "internal"
)

// APIError represents a structured API error
type APIError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Code      int       `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Details   any       `json:"details,omitempty"`
	err       error     // Internal error for logging
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the wrapped internal error
func (e *APIError) Unwrap() error {
	return e.err
}

// WithRequestID adds a request ID to the error
func (e *APIError) WithRequestID(id string) *APIError {
	e.RequestID = id
	return e
}

// WithDetails adds additional details to the error
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

// NewValidationError creates a new validation error
func NewValidationError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeValidation,
		Message: msg,
		Code:    http.StatusBadRequest,
		err:     err,
	}
}

// NewMissingFieldError creates a validation error for absent required keys
func NewMissingFieldError(fields []string) *APIError {
	return &APIError{
		Type:    ErrorTypeMissingField,
		Message: "missing required field: " + fields[0],
		Code:    http.StatusBadRequest,
		Details: fields,
	}
}

// NewConfigurationError indicates a required deployment parameter is absent.
// Fatal until an operator fixes configuration, so it maps to a 500.
func NewConfigurationError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeConfiguration,
		Message: msg,
		Code:    http.StatusInternalServerError,
		err:     err,
	}
}

// NewNoGasError indicates the sender account holds no spendable coins
func NewNoGasError(msg string) *APIError {
	return &APIError{
		Type:    ErrorTypeNoGas,
		Message: msg,
		Code:    http.StatusBadRequest,
	}
}

// NewRateLimitError creates a new rate limit error
func NewRateLimitError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeRateLimit,
		Message: msg,
		Code:    http.StatusTooManyRequests,
		err:     err,
	}
}

// NewSubmissionRejectedError preserves the ledger's own status text verbatim.
// Resubmitting identical bytes will fail identically, so callers must not
// retry these.
func NewSubmissionRejectedError(status string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeRejected,
		Message: status,
		Code:    http.StatusInternalServerError,
		err:     err,
	}
}

// NewTransportError indicates the ledger service could not be reached.
// Safe to retry with backoff.
func NewTransportError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeTransport,
		Message: msg,
		Code:    http.StatusBadGateway,
		err:     err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Message: msg,
		Code:    http.StatusNotFound,
		err:     err,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeInternal,
		Message: msg,
		Code:    http.StatusInternalServerError,
		err:     err,
	}
}

// IsValidation checks if an error is a Validation or MissingField error
func IsValidation(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Type == ErrorTypeValidation || apiErr.Type == ErrorTypeMissingField
	}
	return false
}

// IsRetryable reports whether the failure class may be retried by the caller.
// Only transport failures qualify; a rejected submission fails identically on
// resubmit and everything else needs corrected input or configuration.
func IsRetryable(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Type == ErrorTypeTransport
	}
	return false
}

// AsAPIError normalizes any error into an APIError for the response boundary
func AsAPIError(err error) *APIError {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	return NewInternalError("internal server error", err)
}
