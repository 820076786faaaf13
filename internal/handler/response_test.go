package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idatech-backoffice/internal/model"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("delete expense 3: %w", model.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{model.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{fmt.Errorf("%w: Ghost", model.ErrUnsupportedItemType), http.StatusUnprocessableEntity, "UNSUPPORTED_ITEM_TYPE"},
		{model.ErrUnknownVariant, http.StatusNotFound, "NOT_FOUND"},
		{model.ErrUnknownActor, http.StatusUnauthorized, "UNKNOWN_ACTOR"},
		{model.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
		{model.ErrUserAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
		{badRequest("invalid JSON body", ""), http.StatusBadRequest, "BAD_REQUEST"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body model.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestWriteErrorValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, model.NewValidationError(map[string]string{"amount": "must be a decimal number", "type": "is required"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
	assert.Equal(t, "must be a decimal number", body.Error.Details["amount"])
	assert.Equal(t, "is required", body.Error.Details["type"])
}
