// Package app ties identity, catalog, booking and history together for one
// logical session.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/ride-booking/internal/auth"
	"github.com/ukydev/ride-booking/internal/booking"
	"github.com/ukydev/ride-booking/internal/catalog"
	"github.com/ukydev/ride-booking/internal/db"
	"github.com/ukydev/ride-booking/internal/events"
	"github.com/ukydev/ride-booking/internal/ledger"
	"github.com/ukydev/ride-booking/internal/models"
)

var ErrNotReady = errors.New("no booking in progress")

// Reason explains why a booking request can or cannot proceed.
type Reason string

const (
	ReasonLoginRequired    Reason = "login_required"
	ReasonMissingLocations Reason = "missing_locations"
	ReasonVehicleRequired  Reason = "vehicle_required"
	ReasonReady            Reason = "ready"
)

// Transition is the navigation the hosting shell should perform.
type Transition string

const (
	TransitionNone         Transition = ""
	TransitionLogin        Transition = "login"
	TransitionShowVehicles Transition = "show_vehicles"
	TransitionBooking      Transition = "booking"
	TransitionHome         Transition = "home"
)

// Readiness is the outcome of a booking request.
type Readiness struct {
	Ready      bool       `json:"ready"`
	Reason     Reason     `json:"reason"`
	Transition Transition `json:"transition,omitempty"`
}

// Session owns the mutable state of one signed-in (or anonymous) user.
// All methods are safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	auth     *auth.State
	catalog  *catalog.Catalog
	estimate *models.BookingEstimate

	ledger *ledger.Ledger
	trips  db.TripCollection
	events events.Publisher
	places *Places
	now    func() time.Time
}

// ID returns the session id, empty while signed out.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, _ := s.auth.Claims()
	return c.SessionID
}

// User returns the signed-in user or nil.
func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth.Current()
}

func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth.IsAuthenticated()
}

// Token signs the session record for the client to keep.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth.Token()
}

// Claims returns the signed-in session record.
func (s *Session) Claims() (models.Claims, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth.Claims()
}

func (s *Session) login(ctx context.Context, email, password string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth.Login(ctx, email, password)
}

func (s *Session) signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth.Signup(ctx, req)
}

func (s *Session) restore(ctx context.Context, claims models.Claims) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth.Restore(ctx, claims)
}

// Logout clears the identity along with any booking in progress.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth.Logout()
	s.estimate = nil
	s.catalog.ClearSelection()
}

// UpdateProfile merges the update into the signed-in user.
func (s *Session) UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth.UpdateProfile(ctx, p)
}

// FilterVehicles narrows the catalog to one vehicle type or "all".
func (s *Session) FilterVehicles(vt models.VehicleType) ([]models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.catalog.FilterByType(vt); err != nil {
		return nil, err
	}
	return s.catalog.Filtered(), nil
}

// SelectVehicle selects a vehicle; an unknown id clears the selection.
func (s *Session) SelectVehicle(vehicleID string) (*models.Vehicle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok := s.catalog.Select(vehicleID)
	return s.catalog.Selected(), ok
}

func (s *Session) SelectedVehicle() *models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Selected()
}

// Markers returns the map markers for the filtered catalog.
func (s *Session) Markers() []catalog.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Markers()
}

// Nearby returns available vehicles around a point, nearest first.
func (s *Session) Nearby(center models.Coordinate, radiusKm float64) []catalog.NearbyVehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Nearby(center, radiusKm)
}

// RequestBooking checks the booking preconditions in order and, when all
// hold, prices the trip with the selected vehicle.
func (s *Session) RequestBooking(start, end *models.Location) (Readiness, *models.BookingEstimate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.auth.IsAuthenticated() {
		return Readiness{Reason: ReasonLoginRequired, Transition: TransitionLogin}, nil, nil
	}
	if start == nil || end == nil {
		return Readiness{Reason: ReasonMissingLocations, Transition: TransitionNone}, nil, nil
	}
	vehicle := s.catalog.Selected()
	if vehicle == nil {
		return Readiness{Reason: ReasonVehicleRequired, Transition: TransitionShowVehicles}, nil, nil
	}

	est, err := booking.CreateBooking(vehicle, start, end)
	if err != nil {
		return Readiness{}, nil, err
	}
	s.estimate = est
	out := *est
	return Readiness{Ready: true, Reason: ReasonReady, Transition: TransitionBooking}, &out, nil
}

// CurrentBooking returns the pending estimate together with its vehicle.
func (s *Session) CurrentBooking() (*models.BookingEstimate, *models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vehicle := s.catalog.Selected()
	if s.estimate == nil || vehicle == nil {
		return nil, nil, ErrNotReady
	}
	est := *s.estimate
	return &est, vehicle, nil
}

// ConfirmBooking turns the pending estimate into a trip. The estimate is
// consumed; a second call fails with ErrNotReady.
func (s *Session) ConfirmBooking(ctx context.Context) (*models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.estimate == nil {
		return nil, ErrNotReady
	}
	vehicle, _ := s.catalog.Find(s.estimate.VehicleID)
	trip, err := s.ledger.AddTrip(s.estimate, s.auth.Current(), vehicle)
	if err != nil {
		return nil, err
	}
	s.estimate = nil

	logger := log.WithFields(log.Fields{"trip_id": trip.ID, "user_id": trip.UserID, "vehicle_id": trip.VehicleID})
	if err := s.trips.InsertTrip(ctx, *trip); err != nil {
		logger.WithError(err).Error("failed to persist trip")
	}
	s.publish(ctx, events.TripConfirmed, *trip)
	logger.WithField("cost", trip.Cost).Info("booking confirmed")
	return trip, nil
}

// CancelBooking drops the pending estimate and the vehicle selection.
func (s *Session) CancelBooking() Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.estimate = nil
	s.catalog.ClearSelection()
	return TransitionHome
}

// ReturnHome leaves the booking flow after a confirmation.
func (s *Session) ReturnHome() Transition {
	return s.CancelBooking()
}

// RateTrip rates one of the signed-in user's trips.
func (s *Session) RateTrip(ctx context.Context, tripID string, rating int) (*models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.auth.Current()
	if user == nil {
		return nil, ledger.ErrNotAuthenticated
	}
	if t, ok := s.ledger.Get(tripID); !ok || t.UserID != user.ID {
		return nil, ledger.ErrTripNotFound
	}
	if err := s.ledger.RateTrip(tripID, rating); err != nil {
		return nil, err
	}
	trip, _ := s.ledger.Get(tripID)

	if err := s.trips.UpdateTripRating(ctx, tripID, rating); err != nil {
		log.WithError(err).WithField("trip_id", tripID).Error("failed to persist rating")
	}
	s.publish(ctx, events.TripRated, trip)
	return &trip, nil
}

// History returns the signed-in user's trips matching the query.
func (s *Session) History(q ledger.TripQuery) ([]models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.auth.Current()
	if user == nil {
		return nil, ledger.ErrNotAuthenticated
	}
	return s.ledger.Query(user.ID, q), nil
}

// SearchLocations suggests saved and known places for a query.
func (s *Session) SearchLocations(query string) []models.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	var saved []models.Location
	if user := s.auth.Current(); user != nil {
		saved = user.FavoriteLocations
	}
	return s.places.Search(query, saved)
}

// publish must be called with the lock held.
func (s *Session) publish(ctx context.Context, kind events.Kind, trip models.Trip) {
	e := events.Event{Kind: kind, Trip: trip, OccurredAt: s.now().UTC()}
	if err := s.events.Publish(ctx, e); err != nil {
		log.WithError(err).WithFields(log.Fields{"kind": kind, "trip_id": trip.ID}).Warn("failed to publish event")
	}
}
