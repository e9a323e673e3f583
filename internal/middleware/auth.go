package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ukydev/fleet-equipment/internal/auth"
	"github.com/ukydev/fleet-equipment/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	SessionContextKey contextKey = "session"
)

// AuthMiddleware provides session authentication middleware
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate resolves the bearer token to a live session and adds it to
// the request context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication for certain endpoints
		if shouldSkipAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		token, err := m.authService.ExtractTokenFromHeader(authHeader)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		session, err := m.authService.Resolve(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired session")
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission middleware checks if the principal has the required permission
func (m *AuthMiddleware) RequirePermission(requiredAction string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipalFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "User context not found")
				return
			}

			if !principal.HasPermission(requiredAction) {
				writeError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WithSession returns a copy of ctx carrying session.
func WithSession(ctx context.Context, session *auth.Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, session)
}

// GetSessionFromContext extracts the session from request context
func GetSessionFromContext(ctx context.Context) (*auth.Session, bool) {
	session, ok := ctx.Value(SessionContextKey).(*auth.Session)
	return session, ok && session != nil
}

// GetPrincipalFromContext extracts the session principal from request context
func GetPrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	session, ok := GetSessionFromContext(ctx)
	if !ok {
		return models.Principal{}, false
	}
	return session.Principal, true
}

// shouldSkipAuth determines if authentication should be skipped for a given path
func shouldSkipAuth(path string) bool {
	skipPaths := []string{
		"/api/auth/login",
		"/api/catalog",
		"/health",
		"/metrics",
	}

	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
