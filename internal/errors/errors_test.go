package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	for _, tc := range []struct {
		err  *Error
		want int
	}{
		{ValidationError("bad input"), http.StatusBadRequest},
		{DeserializationError("bad frame", nil), http.StatusBadRequest},
		{NotFoundError("gone"), http.StatusNotFound},
		{CapacityExceededError("full"), http.StatusServiceUnavailable},
		{QueueFullError("stalled"), http.StatusServiceUnavailable},
		{MessageTooLargeError("huge"), http.StatusRequestEntityTooLarge},
		{SendFailedError("broken"), http.StatusInternalServerError},
		{SerializationError("encode", nil), http.StatusInternalServerError},
		{InternalError("boom", nil), http.StatusInternalServerError},
	} {
		assert.Equal(t, tc.want, tc.err.HTTPStatus(), "type %s", tc.err.Type)
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := InternalError("write failed", cause)

	assert.Contains(t, err.Error(), "internal")
	assert.Contains(t, err.Error(), "write failed")
	assert.Contains(t, err.Error(), "disk on fire")

	bare := ValidationError("missing field")
	assert.Equal(t, "validation: missing field", bare.Error())
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := stderrors.New("root cause")
	err := SerializationError("encode failed", cause)

	assert.True(t, stderrors.Is(err, cause))
}

func TestIsType(t *testing.T) {
	err := QueueFullError("stalled")

	assert.True(t, IsType(err, TypeQueueFull))
	assert.False(t, IsType(err, TypeNotFound))
	assert.False(t, IsType(stderrors.New("plain"), TypeQueueFull))
	assert.False(t, IsType(nil, TypeQueueFull))

	wrapped := fmt.Errorf("while sending: %w", err)
	assert.True(t, IsType(wrapped, TypeQueueFull), "IsType sees through wrapping")
}

func TestWithContext(t *testing.T) {
	err := NotFoundError("connection not found").
		WithContext("connection_id", "abc").
		WithContext("attempt", 2)

	assert.Equal(t, "abc", err.Context["connection_id"])
	assert.Equal(t, 2, err.Context["attempt"])

	resp := err.ToResponse()
	assert.Equal(t, "connection not found", resp.Error)
	assert.Equal(t, TypeNotFound, resp.Type)
	assert.Equal(t, "abc", resp.Context["connection_id"])
}

func TestAsStructuredError(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))

	structured := CapacityExceededError("full")
	assert.Same(t, structured, AsStructuredError(structured))

	wrapped := fmt.Errorf("outer: %w", structured)
	assert.Same(t, structured, AsStructuredError(wrapped))

	plain := stderrors.New("plain failure")
	converted := AsStructuredError(plain)
	require.NotNil(t, converted)
	assert.Equal(t, TypeInternal, converted.Type)
	assert.True(t, stderrors.Is(converted, plain))
}
