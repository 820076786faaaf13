package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"idatech-backoffice/internal/model"
	"idatech-backoffice/internal/service"
)

type TrashHandler struct {
	service *service.TrashService
}

func NewTrashHandler(service *service.TrashService) *TrashHandler {
	return &TrashHandler{service: service}
}

func (h *TrashHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context(), actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	meta := model.NewMeta(1, len(entries), len(entries))
	writeSuccess(w, http.StatusOK, map[string]any{"items": entries}, &meta)
}

func (h *TrashHandler) Restore(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Restore(r.Context(), strings.TrimSpace(chi.URLParam(r, "id")), actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.Export(rec), nil)
}

func (h *TrashHandler) Purge(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := h.service.Purge(r.Context(), id, actorFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"id": id, "purged": true}, nil)
}

func (h *TrashHandler) Empty(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.Empty(r.Context(), actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.EmptyTrashResponse{Purged: count}, nil)
}
