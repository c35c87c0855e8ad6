package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ukydev/ride-booking/internal/app"
	"github.com/ukydev/ride-booking/internal/catalog"
	"github.com/ukydev/ride-booking/internal/models"
)

// DefaultNearbyRadiusKm is used when the nearby query has no radius.
const DefaultNearbyRadiusKm = 2.0

// VehicleHandler serves the vehicle catalog
type VehicleHandler struct {
	registry *app.Registry
}

func NewVehicleHandler(registry *app.Registry) *VehicleHandler {
	return &VehicleHandler{registry: registry}
}

// List returns the vehicles matching ?type= (car, scooter, bike or all).
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrAnonymous(w, r, h.registry)
	if !ok {
		return
	}
	vehicles, ok := filter(w, r, session)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// Markers returns map markers for the vehicles matching ?type=.
func (h *VehicleHandler) Markers(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionOrAnonymous(w, r, h.registry)
	if !ok {
		return
	}
	if _, ok := filter(w, r, session); !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Markers())
}

// Nearby returns available vehicles within radius_km of lat/lon, nearest first.
func (h *VehicleHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}
	center := models.Coordinate{Lat: lat, Lon: lon}
	if err := center.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	radius := DefaultNearbyRadiusKm
	if raw := q.Get("radius_km"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "radius_km must be a positive number")
			return
		}
		radius = v
	}

	session, ok := sessionOrAnonymous(w, r, h.registry)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Nearby(center, radius))
}

// Select makes the vehicle the caller's choice for the next booking.
// An unknown id clears the selection.
func (h *VehicleHandler) Select(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	vehicle, found := session.SelectVehicle(r.PathValue("id"))
	if !found {
		writeError(w, http.StatusNotFound, "Vehicle not found")
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func filter(w http.ResponseWriter, r *http.Request, session *app.Session) ([]models.Vehicle, bool) {
	vt := models.VehicleType(r.URL.Query().Get("type"))
	if vt == "" {
		vt = models.VehicleTypeAll
	}
	vehicles, err := session.FilterVehicles(vt)
	if errors.Is(err, catalog.ErrInvalidVehicleType) {
		writeError(w, http.StatusBadRequest, "Invalid vehicle type")
		return nil, false
	}
	if err != nil {
		writeFailure(w, r, err, http.StatusInternalServerError, "Failed to filter vehicles")
		return nil, false
	}
	return vehicles, true
}
