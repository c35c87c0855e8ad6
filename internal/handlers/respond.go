package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/ride-booking/internal/app"
	"github.com/ukydev/ride-booking/internal/auth"
	"github.com/ukydev/ride-booking/internal/middleware"
)

var (
	errReadBody    = errors.New("failed to read request body")
	errInvalidJSON = errors.New("invalid JSON")
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure answers with 400 and the field messages for validation
// errors, and with status and msg otherwise.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, status int, msg string) {
	if ve, ok := auth.AsValidationError(err); ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Validation failed", Fields: ve.Fields})
		return
	}
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("request_id", middleware.GetRequestID(r.Context())).Error(msg)
	}
	writeError(w, status, msg)
}

func decodeJSON(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errReadBody
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errInvalidJSON
	}
	return nil
}

func requireSession(w http.ResponseWriter, r *http.Request) (*app.Session, bool) {
	s, ok := middleware.GetSessionFromContext(r.Context())
	if !ok || !s.IsAuthenticated() {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return nil, false
	}
	return s, true
}

// sessionOrAnonymous returns the caller's session, or a throwaway signed-out
// one for anonymous requests.
func sessionOrAnonymous(w http.ResponseWriter, r *http.Request, registry *app.Registry) (*app.Session, bool) {
	if s, ok := middleware.GetSessionFromContext(r.Context()); ok {
		return s, true
	}
	s, err := registry.NewSession(r.Context())
	if err != nil {
		writeFailure(w, r, err, http.StatusInternalServerError, "Failed to load vehicles")
		return nil, false
	}
	return s, true
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
