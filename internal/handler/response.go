package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"idatech-backoffice/internal/model"
	"idatech-backoffice/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	var validationErr *model.ValidationError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		if apiErr.Details != "" {
			body.Details = apiErr.Details
		}
	} else if errors.As(err, &validationErr) {
		status = http.StatusBadRequest
		body.Code = "VALIDATION_FAILED"
		body.Message = "Invalid input"
		body.Details = validationErr.Fields
	} else if errors.Is(err, model.ErrUnknownVariant) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Unknown record collection"
	} else if errors.Is(err, model.ErrNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Resource not found"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	} else if errors.Is(err, model.ErrUnsupportedItemType) {
		status = http.StatusUnprocessableEntity
		body.Code = "UNSUPPORTED_ITEM_TYPE"
		body.Message = "This trash entry cannot be restored"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrUnknownActor) {
		status = http.StatusUnauthorized
		body.Code = "UNKNOWN_ACTOR"
		body.Message = "The acting user is not known"
	} else if errors.Is(err, model.ErrUserAlreadyExists) {
		status = http.StatusConflict
		body.Code = "ALREADY_EXISTS"
		body.Message = "User already exists"
	} else if errors.Is(err, model.ErrInvalidCredentials) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid credentials"
	} else if errors.Is(err, model.ErrUnauthorized) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	} else {
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

func badRequest(message string, details string) error {
	return apierror.BadRequest(message, details)
}
