package handler

import (
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"idatech-backoffice/internal/model"
	"idatech-backoffice/internal/record"
	"idatech-backoffice/internal/service"
)

const maxListLimit = 500

var listReservedParams = map[string]struct{}{"q": {}, "sort": {}, "order": {}, "limit": {}}

type RecordHandler struct {
	service *service.RecordService
}

func NewRecordHandler(service *service.RecordService) *RecordHandler {
	return &RecordHandler{service: service}
}

// List accepts field filters as ?field=value or ?field__op=value, a free text ?q= matched
// against every text field, and ?sort=field&order=asc|desc&limit=n.
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	variant, err := variantParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	query, err := parseListQuery(variant, r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]map[string]any, 0)
	for rec, err := range h.service.List(r.Context(), variant, query) {
		if err != nil {
			writeError(w, err)
			return
		}
		items = append(items, model.Export(rec))
	}

	meta := model.NewMeta(1, len(items), len(items))
	writeSuccess(w, http.StatusOK, map[string]any{"items": items}, &meta)
}

func parseListQuery(variant model.Variant, values url.Values) (model.ListQuery, error) {
	schema, err := record.For(variant)
	if err != nil {
		return model.ListQuery{}, err
	}

	var query model.ListQuery
	for _, key := range slices.Sorted(maps.Keys(values)) {
		vals := values[key]
		if _, reserved := listReservedParams[key]; reserved || len(vals) == 0 {
			continue
		}
		field, rawOp, found := strings.Cut(key, "__")
		op := model.Op(rawOp)
		if !found {
			op = model.OpEq
		}
		query.Filter.All = append(query.Filter.All, model.Condition{Field: field, Op: op, Value: strings.TrimSpace(vals[0])})
	}

	if q := strings.TrimSpace(values.Get("q")); q != "" {
		for _, spec := range schema.Fields {
			if spec.Kind == record.KindText || spec.Kind == record.KindChoice {
				query.Filter.Any = append(query.Filter.Any, model.Condition{Field: spec.Name, Op: model.OpContains, Value: q})
			}
		}
	}

	query.Sort.Field = strings.TrimSpace(values.Get("sort"))
	switch strings.ToLower(values.Get("order")) {
	case "", "asc":
	case "desc":
		query.Sort.Desc = true
	default:
		return model.ListQuery{}, model.FieldError("order", "must be asc or desc")
	}

	query.Limit = parseIntOrDefault(values.Get("limit"), 0)
	if query.Limit < 0 {
		return model.ListQuery{}, model.FieldError("limit", "must be zero or greater")
	}
	query.Limit = min(query.Limit, maxListLimit)
	return query, nil
}

func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	variant, err := variantParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload map[string]any
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.service.Add(r.Context(), variant, record.StringFields(payload), actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, model.Export(rec), nil)
}

func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	variant, id, ok := recordTarget(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Get(r.Context(), variant, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.Export(rec), nil)
}

func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	variant, id, ok := recordTarget(w, r)
	if !ok {
		return
	}

	var payload map[string]any
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.service.Update(r.Context(), variant, id, record.StringFields(payload), actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.Export(rec), nil)
}

func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	variant, id, ok := recordTarget(w, r)
	if !ok {
		return
	}

	entry, err := h.service.Delete(r.Context(), variant, id, actorFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, entry, nil)
}

func (h *RecordHandler) Export(w http.ResponseWriter, r *http.Request) {
	variant, id, ok := recordTarget(w, r)
	if !ok {
		return
	}

	fields, err := h.service.Export(r.Context(), variant, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, fields, nil)
}

func (h *RecordHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	variant, err := variantParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.BulkDeleteRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}
	if len(payload.IDs) == 0 {
		writeError(w, model.FieldError("ids", "at least one id is required"))
		return
	}

	writeSuccess(w, http.StatusOK, h.service.BulkDelete(r.Context(), variant, payload.IDs, actorFromRequest(r)), nil)
}

func recordTarget(w http.ResponseWriter, r *http.Request) (model.Variant, int64, bool) {
	variant, err := variantParam(r)
	if err != nil {
		writeError(w, err)
		return "", 0, false
	}
	id, err := idParam(r)
	if err != nil {
		writeError(w, err)
		return "", 0, false
	}
	return variant, id, true
}
