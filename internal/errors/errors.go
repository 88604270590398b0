// Package errors provides structured error handling with context propagation and HTTP status code mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	// TypeValidation indicates invalid input (HTTP 400)
	TypeValidation ErrorType = "validation"
	// TypeNotFound indicates a stale or unknown connection id (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeCapacityExceeded indicates the hub refused a new connection (HTTP 503)
	TypeCapacityExceeded ErrorType = "capacity_exceeded"
	// TypeQueueFull indicates a connection's outbound queue rejected a message (HTTP 503)
	TypeQueueFull ErrorType = "queue_full"
	// TypeSendFailed indicates delivery to one connection failed (HTTP 500)
	TypeSendFailed ErrorType = "send_failed"
	// TypeSerialization indicates an envelope could not be encoded (HTTP 500)
	TypeSerialization ErrorType = "serialization"
	// TypeDeserialization indicates a malformed inbound envelope (HTTP 400)
	TypeDeserialization ErrorType = "deserialization"
	// TypeMessageTooLarge indicates an inbound frame exceeded the configured limit (HTTP 413)
	TypeMessageTooLarge ErrorType = "message_too_large"
	// TypeInternal indicates a server-side error (HTTP 500)
	TypeInternal ErrorType = "internal"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
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

// HTTPStatus returns the appropriate HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation, TypeDeserialization:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeCapacityExceeded, TypeQueueFull:
		return http.StatusServiceUnavailable
	case TypeMessageTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// ValidationError creates a new validation error (HTTP 400).
func ValidationError(message string) *Error {
	return &Error{Type: TypeValidation, Message: message, Context: make(map[string]any)}
}

// NotFoundError creates a new not-found error (HTTP 404).
func NotFoundError(message string) *Error {
	return &Error{Type: TypeNotFound, Message: message, Context: make(map[string]any)}
}

// CapacityExceededError signals that the hub is at its connection limit.
func CapacityExceededError(message string) *Error {
	return &Error{Type: TypeCapacityExceeded, Message: message, Context: make(map[string]any)}
}

// QueueFullError signals that a connection's bounded outbound queue is full.
func QueueFullError(message string) *Error {
	return &Error{Type: TypeQueueFull, Message: message, Context: make(map[string]any)}
}

// SendFailedError signals that delivery to one connection failed.
func SendFailedError(message string) *Error {
	return &Error{Type: TypeSendFailed, Message: message, Context: make(map[string]any)}
}

// SerializationError wraps an envelope encoding failure.
func SerializationError(message string, cause error) *Error {
	return &Error{Type: TypeSerialization, Message: message, Cause: cause, Context: make(map[string]any)}
}

// DeserializationError wraps a malformed inbound envelope.
func DeserializationError(message string, cause error) *Error {
	return &Error{Type: TypeDeserialization, Message: message, Cause: cause, Context: make(map[string]any)}
}

// MessageTooLargeError signals an inbound frame over the configured limit.
func MessageTooLargeError(message string) *Error {
	return &Error{Type: TypeMessageTooLarge, Message: message, Context: make(map[string]any)}
}

// InternalError creates a new internal error (HTTP 500).
func InternalError(message string, cause error) *Error {
	return &Error{Type: TypeInternal, Message: message, Cause: cause, Context: make(map[string]any)}
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// IsType reports whether err is a structured error of the given type.
func IsType(err error, t ErrorType) bool {
	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr.Type == t
	}
	return false
}

// ErrorResponse represents the JSON structure sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
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
