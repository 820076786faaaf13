package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idatech-backoffice/internal/config"
	"idatech-backoffice/internal/event"
	"idatech-backoffice/internal/handler"
	"idatech-backoffice/internal/middleware"
	"idatech-backoffice/internal/record"
	"idatech-backoffice/internal/repository/memory"
	"idatech-backoffice/internal/service"
	"idatech-backoffice/internal/websocket"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{
		RequestTimeout:   5 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     10000,
		AuthRateLimitRPM: 10000,
	}

	db := memory.New()
	stores := db.Stores()
	bus := event.NewBus()

	authService := service.NewAuthService(stores.Users, "router-test-secret", time.Hour)
	require.NoError(t, authService.SeedAdmin(ctx, "admin", "admin123"))

	activityService := service.NewActivityService(stores, bus)
	trashService := service.NewTrashService(db, record.DefaultRules(), activityService, bus)
	recordService := service.NewRecordService(stores, trashService, activityService, bus)

	h := New(cfg, middleware.NewAuthMiddleware(authService), Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Records:   handler.NewRecordHandler(recordService),
		Trash:     handler.NewTrashHandler(trashService),
		Activity:  handler.NewActivityHandler(activityService),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(db, activityService)),
		Live:      handler.NewLiveHandler(websocket.NewHub(bus), cfg.CORSOrigins),
	}, nil)

	s := &testServer{t: t, handler: h}
	resp := s.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin", "password": "admin123"})
	require.True(t, resp.Success)
	var token struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &token))
	s.token = token.AccessToken
	return s
}

func (s *testServer) request(method string, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) do(method string, path string, body any) envelope {
	s.t.Helper()
	rec := s.request(method, path, body)
	var out envelope
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRouterHealthAndAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.request(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = s.request(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "backoffice_websocket_clients")

	me := s.do(http.MethodGet, "/api/v1/auth/me", nil)
	assert.True(t, me.Success)

	s.token = ""
	rec = s.request(http.MethodGet, "/api/v1/trash", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.request(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterRecordLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.request(http.MethodPost, "/api/v1/records/students", map[string]any{
		"name": "Ada", "type": "trainee", "program": "iot", "level": "beginner", "total_sessions": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]any
	var resp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, "Ada", created["name"])
	assert.EqualValues(t, 1, created["id"])

	list := s.do(http.MethodGet, "/api/v1/records/students?q=ad&sort=name", nil)
	assert.Contains(t, string(list.Data), "Ada")

	deleted := s.do(http.MethodDelete, "/api/v1/records/students/1", nil)
	require.True(t, deleted.Success)
	var entry struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(deleted.Data, &entry))

	rec = s.request(http.MethodGet, "/api/v1/records/students/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	restored := s.do(http.MethodPost, "/api/v1/trash/"+entry.ID+"/restore", nil)
	require.True(t, restored.Success)
	assert.Contains(t, string(restored.Data), `"name":"Ada"`)

	summary := s.do(http.MethodGet, "/api/v1/dashboard/summary", nil)
	assert.Contains(t, string(summary.Data), `"total_students":1`)
	assert.Contains(t, string(summary.Data), `"active_students":1`)
}

func TestRouterValidationAndUnknownCollection(t *testing.T) {
	s := newTestServer(t)

	rec := s.request(http.MethodPost, "/api/v1/records/expenses", map[string]any{"type": "transport", "amount": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "description")
	assert.Contains(t, rec.Body.String(), "amount")

	rec = s.request(http.MethodGet, "/api/v1/records/widgets", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.request(http.MethodGet, "/api/v1/records/expenses/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouterBulkDeleteAndEmptyTrash(t *testing.T) {
	s := newTestServer(t)

	for _, description := range []string{"Fuel", "Chalk"} {
		rec := s.request(http.MethodPost, "/api/v1/records/expenses", map[string]any{
			"type": "other", "description": description, "amount": 5,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	bulk := s.do(http.MethodPost, "/api/v1/records/expenses/bulk-delete", map[string]any{"ids": []int{1, 2, 3}})
	require.True(t, bulk.Success)
	assert.Contains(t, string(bulk.Data), `"deleted_count":2`)

	trash := s.do(http.MethodGet, "/api/v1/trash", nil)
	assert.Contains(t, string(trash.Data), "Chalk")

	emptied := s.do(http.MethodPost, "/api/v1/trash/empty", nil)
	assert.JSONEq(t, `{"purged":2}`, string(emptied.Data))

	activities := s.do(http.MethodGet, "/api/v1/activities?message=bulk", nil)
	assert.Contains(t, string(activities.Data), "Bulk deleted 2 expenses")
}
