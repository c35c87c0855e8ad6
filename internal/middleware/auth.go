package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/ride-booking/internal/app"
	"github.com/ukydev/ride-booking/internal/auth"
	"github.com/ukydev/ride-booking/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	ClaimsContextKey  contextKey = "claims"
	SessionContextKey contextKey = "session"
)

// SessionResolver finds the live session behind a validated token.
type SessionResolver interface {
	Resolve(ctx context.Context, claims models.Claims) (*app.Session, error)
}

// AuthMiddleware resolves bearer tokens to sessions
type AuthMiddleware struct {
	authService *auth.Service
	sessions    SessionResolver
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service, sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		sessions:    sessions,
	}
}

// Authenticate rejects requests without a valid token for a live session.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		ctx, err := m.attach(r.Context(), authHeader)
		if err != nil {
			log.WithError(err).WithField("request_id", GetRequestID(r.Context())).Debug("authentication failed")
			writeError(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches the session when a valid token is present and lets
// anonymous requests through otherwise.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx, err := m.attach(r.Context(), authHeader)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) attach(ctx context.Context, authHeader string) (context.Context, error) {
	token, err := m.authService.ExtractTokenFromHeader(authHeader)
	if err != nil {
		return nil, err
	}
	claims, err := m.authService.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	session, err := m.sessions.Resolve(ctx, *claims)
	if err != nil {
		return nil, err
	}
	ctx = context.WithValue(ctx, ClaimsContextKey, claims)
	return context.WithValue(ctx, SessionContextKey, session), nil
}

// GetClaimsFromContext extracts the session record from request context
func GetClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*models.Claims)
	return claims, ok
}

// GetSessionFromContext extracts the authenticated session from request context
func GetSessionFromContext(ctx context.Context) (*app.Session, bool) {
	s, ok := ctx.Value(SessionContextKey).(*app.Session)
	return s, ok && s != nil
}

func writeError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
