package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-equipment/internal/auth"
	"github.com/ukydev/fleet-equipment/internal/metrics"
	"github.com/ukydev/fleet-equipment/internal/middleware"
	"github.com/ukydev/fleet-equipment/internal/models"
)

func newTestAuthService(t *testing.T) *auth.Service {
	t.Helper()
	authService, err := auth.NewService("test-secret", time.Hour, auth.DefaultCredentials)
	require.NoError(t, err)
	return authService
}

func TestAuthHandler_Login(t *testing.T) {
	authService := newTestAuthService(t)
	handler := NewAuthHandler(authService, metrics.New())

	t.Run("successful login", func(t *testing.T) {
		before := authService.Sessions().Len()
		body, err := json.Marshal(models.LoginRequest{Username: "super_tl", Password: "123"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response models.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response.Token)
		assert.Greater(t, response.ExpiresAt, time.Now().Unix())
		assert.Equal(t, models.RoleSupervisor, response.Principal.Role)
		assert.Equal(t, models.City("Three Lagoas"), response.Principal.City)
		assert.Equal(t, "Supervisor TL", response.Principal.Name)

		session, err := authService.Resolve(response.Token)
		require.NoError(t, err)
		assert.Equal(t, response.Principal, session.Principal)
		assert.Equal(t, before+1, authService.Sessions().Len())
	})

	t.Run("invalid credentials", func(t *testing.T) {
		body, err := json.Marshal(models.LoginRequest{Username: "adm", Password: "wrong"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var response ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "invalid credentials", response.Error)
	})

	t.Run("unknown user", func(t *testing.T) {
		body, err := json.Marshal(models.LoginRequest{Username: "nobody", Password: "123"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"username":"adm"}`))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{`))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
		w := httptest.NewRecorder()

		handler.Login(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	authService := newTestAuthService(t)
	handler := NewAuthHandler(authService, nil)

	result, err := authService.Login("adm", "adm123")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req = req.WithContext(middleware.WithSession(req.Context(), result.Session))
	w := httptest.NewRecorder()

	handler.Logout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	_, err = authService.Resolve(result.Token)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)

	// Second logout of the same session is rejected
	w = httptest.NewRecorder()
	handler.Logout(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	t.Run("no session in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		w := httptest.NewRecorder()

		handler.Logout(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	authService := newTestAuthService(t)
	handler := NewAuthHandler(authService, nil)

	result, err := authService.Login("op_geral", "123")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(middleware.WithSession(req.Context(), result.Session))
	w := httptest.NewRecorder()

	handler.Me(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response auth.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, result.Session.ID, response.ID)
	assert.Equal(t, models.RoleOperator, response.Principal.Role)
	assert.Equal(t, models.CityGlobal, response.Principal.City)
}
