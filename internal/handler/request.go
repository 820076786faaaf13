package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"idatech-backoffice/internal/middleware"
	"idatech-backoffice/internal/model"
)

const maxBodyBytes = 1 << 20

// actorFromRequest builds the acting user from the verified token claims.
func actorFromRequest(r *http.Request) model.Actor {
	actor := model.Actor{IP: middleware.ClientIP(r)}

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return actor
	}

	actor.UserID = claims.UserID
	actor.Username = claims.Username
	actor.Role = claims.Role
	return actor
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		if err == io.EOF {
			return badRequest("request body is required", "")
		}
		return badRequest("invalid JSON body", err.Error())
	}
	return nil
}

func variantParam(r *http.Request) (model.Variant, error) {
	return model.ParseVariantPath(chi.URLParam(r, "variant"))
}

func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("id must be a positive integer", raw)
	}
	return id, nil
}

func parseIntOrDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}
