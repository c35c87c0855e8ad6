package db

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/ride-booking/internal/models"
)

// NewMemoryStore returns a store kept in process memory.
func NewMemoryStore() Store {
	return Store{
		Users:    NewMemoryUserCollection(),
		Vehicles: NewMemoryVehicleCollection(),
		Trips:    NewMemoryTripCollection(),
	}
}

// MemoryUserCollection implements UserCollection without a database.
type MemoryUserCollection struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserCollection() *MemoryUserCollection {
	return &MemoryUserCollection{users: make(map[string]models.User)}
}

func (c *MemoryUserCollection) InsertUser(_ context.Context, user models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}
	if _, ok := c.users[user.ID]; ok {
		return fmt.Errorf("%w: user %s", ErrDuplicate, user.ID)
	}
	if c.emailTaken(user.Email, "") {
		return fmt.Errorf("%w: email %s", ErrDuplicate, user.Email)
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	c.users[user.ID] = *user.Clone()
	return nil
}

func (c *MemoryUserCollection) FindUserByID(_ context.Context, id string) (*models.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	return u.Clone(), nil
}

func (c *MemoryUserCollection) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, u := range c.users {
		if strings.EqualFold(u.Email, email) {
			return u.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", ErrNotFound, email)
}

func (c *MemoryUserCollection) UpdateUser(_ context.Context, user models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.users[user.ID]; !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, user.ID)
	}
	if c.emailTaken(user.Email, user.ID) {
		return fmt.Errorf("%w: email %s", ErrDuplicate, user.Email)
	}
	user.UpdatedAt = time.Now()
	c.users[user.ID] = *user.Clone()
	return nil
}

func (c *MemoryUserCollection) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.users[id]
	if !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	u.LastLogin = &at
	u.UpdatedAt = at
	c.users[id] = u
	return nil
}

// emailTaken must be called with the lock held.
func (c *MemoryUserCollection) emailTaken(email, exceptID string) bool {
	for id, u := range c.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// MemoryVehicleCollection implements VehicleCollection without a database.
type MemoryVehicleCollection struct {
	mu       sync.RWMutex
	vehicles map[string]models.Vehicle
}

func NewMemoryVehicleCollection() *MemoryVehicleCollection {
	return &MemoryVehicleCollection{vehicles: make(map[string]models.Vehicle)}
}

func (c *MemoryVehicleCollection) InsertVehicle(_ context.Context, vehicle models.Vehicle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.vehicles[vehicle.ID]; ok {
		return fmt.Errorf("%w: vehicle %s", ErrDuplicate, vehicle.ID)
	}
	c.vehicles[vehicle.ID] = vehicle
	return nil
}

// FindVehicles returns the catalog ordered by id, like the Mongo collection.
func (c *MemoryVehicleCollection) FindVehicles(_ context.Context) ([]models.Vehicle, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Vehicle, 0, len(c.vehicles))
	for _, v := range c.vehicles {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b models.Vehicle) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (c *MemoryVehicleCollection) FindVehicleByID(_ context.Context, id string) (*models.Vehicle, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("%w: vehicle %s", ErrNotFound, id)
	}
	return &v, nil
}

// MemoryTripCollection implements TripCollection without a database.
type MemoryTripCollection struct {
	mu    sync.RWMutex
	trips []models.Trip
}

func NewMemoryTripCollection() *MemoryTripCollection {
	return &MemoryTripCollection{}
}

func (c *MemoryTripCollection) InsertTrip(_ context.Context, trip models.Trip) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.trips {
		if t.ID == trip.ID {
			return fmt.Errorf("%w: trip %s", ErrDuplicate, trip.ID)
		}
	}
	c.trips = append(c.trips, trip.Clone())
	return nil
}

func (c *MemoryTripCollection) UpdateTripRating(_ context.Context, id string, rating int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.trips {
		if c.trips[i].ID == id {
			r := rating
			c.trips[i].Rating = &r
			return nil
		}
	}
	return fmt.Errorf("%w: trip %s", ErrNotFound, id)
}

func (c *MemoryTripCollection) FindTrips(_ context.Context) ([]models.Trip, error) {
	return c.filter(func(models.Trip) bool { return true }), nil
}

func (c *MemoryTripCollection) FindTripsByUser(_ context.Context, userID string) ([]models.Trip, error) {
	return c.filter(func(t models.Trip) bool { return t.UserID == userID }), nil
}

// filter returns matching trips ordered by start time, then insertion.
func (c *MemoryTripCollection) filter(keep func(models.Trip) bool) []models.Trip {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []models.Trip{}
	for _, t := range c.trips {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b models.Trip) int { return a.StartTime.Compare(b.StartTime) })
	return out
}
