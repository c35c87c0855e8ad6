package handlers

import (
	"errors"
	"net/http"

	"github.com/ukydev/ride-booking/internal/app"
	"github.com/ukydev/ride-booking/internal/booking"
	"github.com/ukydev/ride-booking/internal/models"
)

// BookingHandler drives the estimate, confirm and cancel flow
type BookingHandler struct {
	registry *app.Registry
}

func NewBookingHandler(registry *app.Registry) *BookingHandler {
	return &BookingHandler{registry: registry}
}

// EstimateRequest names the two ends of a trip. A missing start falls
// back to the user's home or first saved location.
type EstimateRequest struct {
	StartLocation *models.Location `json:"startLocation"`
	EndLocation   *models.Location `json:"endLocation"`
}

type bookingResponse struct {
	Readiness app.Readiness           `json:"readiness"`
	Estimate  *models.BookingEstimate `json:"estimate,omitempty"`
	Vehicle   *models.Vehicle         `json:"vehicle,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

var readinessStatus = map[app.Reason]int{
	app.ReasonLoginRequired:    http.StatusUnauthorized,
	app.ReasonMissingLocations: http.StatusBadRequest,
	app.ReasonVehicleRequired:  http.StatusConflict,
}

var readinessMessage = map[app.Reason]string{
	app.ReasonLoginRequired:    "Login required",
	app.ReasonMissingLocations: "Start and end locations are required",
	app.ReasonVehicleRequired:  "Select a vehicle first",
}

// Estimate prices a trip with the selected vehicle.
func (h *BookingHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrAnonymous(w, r, h.registry)
	if !ok {
		return
	}

	var req EstimateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.StartLocation == nil {
		if user := session.User(); user != nil {
			if home, ok := user.DefaultStartLocation(); ok {
				req.StartLocation = &home
			}
		}
	}
	for _, loc := range []*models.Location{req.StartLocation, req.EndLocation} {
		if loc == nil {
			continue
		}
		if err := loc.Coordinate().Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	readiness, est, err := session.RequestBooking(req.StartLocation, req.EndLocation)
	if errors.Is(err, booking.ErrUnknownVehicleType) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeFailure(w, r, err, http.StatusInternalServerError, "Failed to estimate booking")
		return
	}
	if !readiness.Ready {
		writeJSON(w, readinessStatus[readiness.Reason], bookingResponse{
			Readiness: readiness,
			Error:     readinessMessage[readiness.Reason],
		})
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse{
		Readiness: readiness,
		Estimate:  est,
		Vehicle:   session.SelectedVehicle(),
	})
}

// Current returns the pending estimate and its vehicle.
func (h *BookingHandler) Current(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	est, vehicle, err := session.CurrentBooking()
	if errors.Is(err, app.ErrNotReady) {
		writeError(w, http.StatusNotFound, "No booking in progress")
		return
	}
	if err != nil {
		writeFailure(w, r, err, http.StatusInternalServerError, "Failed to load booking")
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse{
		Readiness: app.Readiness{Ready: true, Reason: app.ReasonReady, Transition: app.TransitionBooking},
		Estimate:  est,
		Vehicle:   vehicle,
	})
}

// Confirm books the pending estimate.
func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	trip, err := session.ConfirmBooking(r.Context())
	if errors.Is(err, app.ErrNotReady) {
		writeError(w, http.StatusConflict, "No booking in progress")
		return
	}
	if err != nil {
		writeFailure(w, r, err, http.StatusInternalServerError, "Failed to confirm booking")
		return
	}
	writeJSON(w, http.StatusCreated, trip)
}

// Cancel abandons the booking flow, or leaves it after a confirmation.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]app.Transition{"transition": session.CancelBooking()})
}
