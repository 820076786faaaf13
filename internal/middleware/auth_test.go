package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idatech-backoffice/internal/model"
)

type stubValidator map[string]*model.AuthClaims

func (s stubValidator) ValidateToken(token string) (*model.AuthClaims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func TestAuthMiddleware(t *testing.T) {
	mw := NewAuthMiddleware(stubValidator{
		"admin-token": {UserID: "1", Username: "admin", Role: model.RoleAdmin},
		"staff-token": {UserID: "2", Username: "amina", Role: model.RoleStaff},
	})

	var seen *model.AuthClaims
	protected := mw.RequireAuth(mw.RequireRoles(model.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"insufficient role", "Bearer staff-token", http.StatusForbidden},
		{"admin", "bearer admin-token", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/register", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	require.NotNil(t, seen)
	assert.Equal(t, "admin", seen.Username)
}

func TestRequireAuthAcceptsQueryTokenOnWebsocketUpgrade(t *testing.T) {
	mw := NewAuthMiddleware(stubValidator{"staff-token": {UserID: "2", Role: model.RoleStaff}})
	handler := mw.RequireAuth(okHandler())

	plain := httptest.NewRecorder()
	handler.ServeHTTP(plain, httptest.NewRequest(http.MethodGet, "/ws?access_token=staff-token", nil))
	assert.Equal(t, http.StatusUnauthorized, plain.Code)

	req := httptest.NewRequest(http.MethodGet, "/ws?access_token=staff-token", nil)
	req.Header.Set("Upgrade", "websocket")
	upgrade := httptest.NewRecorder()
	handler.ServeHTTP(upgrade, req)
	assert.Equal(t, http.StatusOK, upgrade.Code)
}

func TestRecoveryWritesEnvelope(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}
