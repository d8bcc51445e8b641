package gateway

import (
	"encoding/json"
	"fmt"
	"time"
)

// Error represents a non-2xx reply from the gateway. It carries the HTTP
// status code and the response body text so callers can decide how to react
// (the gateway reports errors as {"error": "..."} JSON, surfaced verbatim
// in Text).
type Error struct {
	// StatusCode is the HTTP status code returned by the gateway.
	StatusCode int

	// Text is the raw response body. Usually JSON, but preserved as-is
	// even when it is not.
	Text string

	// RetryAfter is the delay requested by a Retry-After header, when the
	// gateway sent one. Zero means no header.
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway error (status %d): %s", e.StatusCode, e.Text)
}

// Message returns the "error" field of the gateway's JSON error body,
// falling back to the raw body text when the body is not in that shape.
func (e *Error) Message() string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Text), &body); err == nil && body.Error != "" {
		return body.Error
	}
	return e.Text
}

// NewError creates a new gateway Error.
func NewError(statusCode int, text string) *Error {
	return &Error{
		StatusCode: statusCode,
		Text:       text,
	}
}

// InternalError represents a client-side failure: the request never reached
// the gateway, or its reply could not be transported or decoded. These are
// bugs, I/O failures, or protocol mismatches rather than gateway verdicts.
type InternalError struct {
	// Message describes what the client was doing when it failed.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tensorzero internal error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("tensorzero internal error: %s", e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// NewInternalError creates a new InternalError wrapping err.
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// ValidationError represents an invalid request detected before any bytes
// were sent to the gateway.
type ValidationError struct {
	// Field is the request field that failed validation.
	Field string

	// Message describes why validation failed.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in field %q: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
