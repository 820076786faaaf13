package handler

import (
	"net/http"
	"strings"

	"idatech-backoffice/internal/model"
	"idatech-backoffice/internal/service"
)

type DashboardHandler struct {
	service *service.DashboardService
}

func NewDashboardHandler(service *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	filter := model.StudentFilter(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("filter"))))
	if filter == "all" {
		filter = model.StudentFilterAll
	}

	overview, err := h.service.Overview(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, overview, nil)
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summarize(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, summary, nil)
}

func (h *DashboardHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, results, nil)
}

func (h *DashboardHandler) RecentTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	transactions, err := h.service.RecentTransactions(r.Context(), model.TransactionQuery{
		Type:   query.Get("type"),
		Search: query.Get("search"),
		Sort:   strings.ToLower(strings.TrimSpace(query.Get("sort"))),
		Limit:  parseIntOrDefault(query.Get("limit"), 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]map[string]any, 0, len(transactions))
	for _, tx := range transactions {
		items = append(items, model.Export(tx))
	}
	writeSuccess(w, http.StatusOK, map[string]any{"items": items}, nil)
}
