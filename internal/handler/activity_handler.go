package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"idatech-backoffice/internal/model"
	"idatech-backoffice/internal/service"
)

type ActivityHandler struct {
	service *service.ActivityService
}

func NewActivityHandler(service *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	items, meta, err := h.service.List(r.Context(), model.ActivityQuery{
		Actor:   strings.TrimSpace(query.Get("actor")),
		Message: strings.TrimSpace(query.Get("message")),
		From:    strings.TrimSpace(query.Get("from")),
		To:      strings.TrimSpace(query.Get("to")),
		Sort:    strings.TrimSpace(query.Get("sort")),
		Order:   strings.ToLower(strings.TrimSpace(query.Get("order"))),
		Page:    parseIntOrDefault(query.Get("page"), 1),
		Limit:   parseIntOrDefault(query.Get("limit"), 50),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.ActivityListData{Items: items}, &meta)
}

func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := h.service.Delete(r.Context(), id, actorFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"id": id, "deleted": true}, nil)
}
