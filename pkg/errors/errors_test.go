package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelsSurviveDecoration(t *testing.T) {
	cause := New("disk full")
	err := ErrStorage.WithCause(cause).WithMetadata("operation", "append")

	assert.True(t, Is(err, ErrStorage))
	assert.True(t, Is(err, cause))
	assert.False(t, Is(err, ErrUnknownSchema))
	assert.Empty(t, ErrStorage.Metadata(), "decorating must not mutate the sentinel")

	wrapped := fmt.Errorf("listing: %w", err)
	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeStorage, appErr.Code())
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(wrapped))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrInvalidField("age", "must be an integer")))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrInvalidCredentials))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrAccountExists))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(New("boom")))
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(ErrInvalidField("age", "must be an integer"))
	assert.Equal(t, "invalid_request", resp.Error)
	assert.Equal(t, "invalid age: must be an integer", resp.ErrorDescription)
	assert.Equal(t, "age", resp.Metadata["field"])

	resp = ToErrorResponse(ErrStorage.WithMessage("secret path /var/x failed"))
	assert.Equal(t, "Storage operation failed", resp.ErrorDescription)

	resp = ToErrorResponse(New("boom"))
	assert.Equal(t, "server_error", resp.Error)
}
