package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/ukydev/ride-booking/internal/app"
	"github.com/ukydev/ride-booking/internal/auth"
	"github.com/ukydev/ride-booking/internal/models"
)

// AuthHandler handles authentication and profile requests
type AuthHandler struct {
	authService *auth.Service
	registry    *app.Registry
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, registry *app.Registry) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		registry:    registry,
	}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if err := decodeJSON(r, &loginReq); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authService.ValidateLogin(loginReq); err != nil {
		writeFailure(w, r, err, http.StatusBadRequest, err.Error())
		return
	}

	session, token, err := h.registry.Login(r.Context(), loginReq.Email, loginReq.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Login aborted")
		return
	case err != nil:
		writeFailure(w, r, err, http.StatusInternalServerError, "Failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{Token: token, User: *session.User()})
}

// Signup handles account creation and signs the new user in
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var signupReq models.SignupRequest
	if err := decodeJSON(r, &signupReq); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, token, err := h.registry.Signup(r.Context(), signupReq)
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email already exists")
		return
	case err != nil:
		writeFailure(w, r, err, http.StatusInternalServerError, "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, models.LoginResponse{Token: token, User: *session.User()})
}

// Logout ends the caller's session; its token stops working.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	h.registry.Logout(session)
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile returns the current user's profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	user := session.User()
	if user == nil {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile updates the current user's profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	var update models.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := session.UpdateProfile(r.Context(), update)
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email already exists")
		return
	case err != nil:
		writeFailure(w, r, err, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
