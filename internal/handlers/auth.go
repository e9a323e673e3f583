package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-equipment/internal/auth"
	"github.com/ukydev/fleet-equipment/internal/metrics"
	"github.com/ukydev/fleet-equipment/internal/middleware"
	"github.com/ukydev/fleet-equipment/internal/models"
)

// AuthHandler handles login, logout and session lookups
type AuthHandler struct {
	authService *auth.Service
	metrics     *metrics.Metrics
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		metrics:     m,
	}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var loginReq models.LoginRequest
	if err := json.Unmarshal(body, &loginReq); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if loginReq.Username == "" || loginReq.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	result, err := h.authService.Login(loginReq.Username, loginReq.Password)
	if err != nil {
		h.metrics.LoginAttempt(false)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.WithField("username", loginReq.Username).Warn("Login rejected")
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		log.WithError(err).Error("Login failed")
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	h.metrics.LoginAttempt(true)

	log.WithFields(log.Fields{
		"username": loginReq.Username,
		"role":     result.Session.Principal.Role,
		"city":     result.Session.Principal.City,
		"sessions": h.authService.Sessions().Len(),
	}).Info("User logged in")

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.Session.ExpiresAt.Unix(),
		Principal: result.Session.Principal,
	})
}

// Logout destroys the current session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	if err := h.authService.Logout(session.ID); err != nil {
		writeError(w, http.StatusUnauthorized, "Session already closed")
		return
	}

	log.WithField("name", session.Principal.Name).Info("User logged out")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me returns the current principal and session expiry
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	writeJSON(w, http.StatusOK, session)
}
