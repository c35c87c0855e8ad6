// Package ledger keeps the trip history shared by all sessions.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/ride-booking/internal/models"
)

var (
	ErrNotAuthenticated = errors.New("no authenticated user")
	ErrNoEstimate       = errors.New("no booking estimate")
	ErrTripNotFound     = errors.New("trip not found")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrTripNotRatable   = errors.New("only completed trips can be rated")
)

// StatusAll matches every trip status in a query.
const StatusAll = "all"

// TripQuery filters a user's history.
type TripQuery struct {
	Status string
	Search string
}

// DayGroup is the trips that started on one calendar day.
type DayGroup struct {
	Date  string        `json:"date"` // YYYY-MM-DD
	Trips []models.Trip `json:"trips"`
}

type Option func(*Ledger)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator overrides trip id generation.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

type Ledger struct {
	mu    sync.RWMutex
	trips []models.Trip
	index map[string]int
	now   func() time.Time
	newID func() string
}

// New creates a ledger seeded with the given trips in order.
func New(seed []models.Trip, opts ...Option) *Ledger {
	l := &Ledger{
		trips: make([]models.Trip, 0, len(seed)),
		index: make(map[string]int, len(seed)),
		now:   time.Now,
		newID: func() string { return primitive.NewObjectID().Hex() },
	}
	for _, opt := range opts {
		opt(l)
	}
	for _, t := range seed {
		l.index[t.ID] = len(l.trips)
		l.trips = append(l.trips, t.Clone())
	}
	return l
}

// AddTrip turns a confirmed estimate into a completed trip for the user.
// The vehicle may be nil, in which case type and model are left empty.
func (l *Ledger) AddTrip(est *models.BookingEstimate, user *models.User, vehicle *models.Vehicle) (*models.Trip, error) {
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	if est == nil {
		return nil, ErrNoEstimate
	}

	start := l.now()
	trip := models.Trip{
		ID:            l.newID(),
		UserID:        user.ID,
		VehicleID:     est.VehicleID,
		StartLocation: est.StartLocation,
		EndLocation:   est.EndLocation,
		StartTime:     start,
		EndTime:       start.Add(time.Duration(est.EstimatedDurationMin) * time.Minute),
		Duration:      est.EstimatedDurationMin,
		Distance:      est.EstimatedDistanceKm,
		Cost:          est.EstimatedCost,
		Status:        models.TripCompleted,
	}
	if vehicle != nil {
		trip.VehicleType = vehicle.Type
		trip.VehicleModel = vehicle.Model
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.index[trip.ID]; exists {
		return nil, fmt.Errorf("duplicate trip id %s", trip.ID)
	}
	l.index[trip.ID] = len(l.trips)
	l.trips = append(l.trips, trip)

	out := trip.Clone()
	return &out, nil
}

// RateTrip sets or overwrites the rating of a completed trip.
func (l *Ledger) RateTrip(tripID string, rating int) error {
	if !models.IsValidRating(rating) {
		return ErrInvalidRating
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.index[tripID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTripNotFound, tripID)
	}
	if l.trips[i].Status != models.TripCompleted {
		return ErrTripNotRatable
	}
	r := rating
	l.trips[i].Rating = &r
	return nil
}

// Get returns a copy of one trip.
func (l *Ledger) Get(tripID string) (models.Trip, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.index[tripID]
	if !ok {
		return models.Trip{}, false
	}
	return l.trips[i].Clone(), true
}

// TripsFor returns the user's trips in insertion order.
func (l *Ledger) TripsFor(userID string) []models.Trip {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []models.Trip{}
	for _, t := range l.trips {
		if t.UserID == userID {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Query returns the user's trips matching the status and a case-insensitive
// search over vehicle model and location names.
func (l *Ledger) Query(userID string, q TripQuery) []models.Trip {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := []models.Trip{}
	for _, t := range l.TripsFor(userID) {
		if q.Status != "" && q.Status != StatusAll && string(t.Status) != q.Status {
			continue
		}
		if search != "" && !matches(t, search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matches(t models.Trip, search string) bool {
	for _, field := range []string{t.VehicleModel, t.StartLocation.Name, t.EndLocation.Name} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

// Len returns the number of trips in the ledger.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trips)
}

// GroupByDay groups trips by the date they started, newest day first.
// Trips keep their relative order inside a day.
func GroupByDay(trips []models.Trip) []DayGroup {
	byDay := make(map[string]*DayGroup)
	var days []string
	for _, t := range trips {
		day := t.StartTime.Format("2006-01-02")
		g, ok := byDay[day]
		if !ok {
			g = &DayGroup{Date: day}
			byDay[day] = g
			days = append(days, day)
		}
		g.Trips = append(g.Trips, t)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	out := make([]DayGroup, 0, len(days))
	for _, d := range days {
		out = append(out, *byDay[d])
	}
	return out
}
