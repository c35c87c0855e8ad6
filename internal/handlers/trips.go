package handlers

import (
	"errors"
	"net/http"

	"github.com/ukydev/ride-booking/internal/ledger"
	"github.com/ukydev/ride-booking/internal/models"
)

// TripHandler serves the trip history
type TripHandler struct{}

func NewTripHandler() *TripHandler {
	return &TripHandler{}
}

// RateRequest is the body of a rating submission.
type RateRequest struct {
	Rating int `json:"rating"`
}

// List returns the caller's trips filtered by ?status= and ?q=.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	trips, ok := h.query(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

// History returns the caller's trips grouped by day, newest first.
func (h *TripHandler) History(w http.ResponseWriter, r *http.Request) {
	trips, ok := h.query(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ledger.GroupByDay(trips))
}

func (h *TripHandler) query(w http.ResponseWriter, r *http.Request) ([]models.Trip, bool) {
	session, ok := requireSession(w, r)
	if !ok {
		return nil, false
	}
	q := ledger.TripQuery{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("q"),
	}
	if q.Status != "" && q.Status != ledger.StatusAll && !models.IsValidTripStatus(models.TripStatus(q.Status)) {
		writeError(w, http.StatusBadRequest, "Invalid trip status")
		return nil, false
	}
	trips, err := session.History(q)
	if errors.Is(err, ledger.ErrNotAuthenticated) {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return nil, false
	}
	if err != nil {
		writeFailure(w, r, err, http.StatusInternalServerError, "Failed to load trips")
		return nil, false
	}
	return trips, true
}

// Rate sets the rating of one of the caller's completed trips.
func (h *TripHandler) Rate(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	var req RateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := session.RateTrip(r.Context(), r.PathValue("id"), req.Rating)
	switch {
	case errors.Is(err, ledger.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrTripNotFound):
		writeError(w, http.StatusNotFound, "Trip not found")
	case errors.Is(err, ledger.ErrTripNotRatable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "User context not found")
	case err != nil:
		writeFailure(w, r, err, http.StatusInternalServerError, "Failed to rate trip")
	default:
		writeJSON(w, http.StatusOK, trip)
	}
}
