package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := BadRequest("invalid role", "viewer")
	assert.Equal(t, "BAD_REQUEST: invalid role (viewer)", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)

	wrapped := fmt.Errorf("register: %w", Unauthorized("invalid token"))
	var target *APIError
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "UNAUTHORIZED: invalid token", target.Error())

	var nilErr *APIError
	assert.Equal(t, "", nilErr.Error())
}
