package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/ride-booking/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// UserCollection defines the interface for user database operations.
// Email lookups are case-insensitive.
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
	FindVehicles(ctx context.Context) ([]models.Vehicle, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
}

// TripCollection defines the interface for trip history operations.
type TripCollection interface {
	InsertTrip(ctx context.Context, trip models.Trip) error
	UpdateTripRating(ctx context.Context, id string, rating int) error
	FindTrips(ctx context.Context) ([]models.Trip, error)
	FindTripsByUser(ctx context.Context, userID string) ([]models.Trip, error)
}

// Store bundles the collections the service needs.
type Store struct {
	Users    UserCollection
	Vehicles VehicleCollection
	Trips    TripCollection
}

// SeedData is the static data loaded into an empty store.
type SeedData struct {
	Users    []models.User
	Vehicles []models.Vehicle
	Trips    []models.Trip
}

// Seed inserts every record, skipping the ones already present.
// It returns how many records were inserted.
func Seed(ctx context.Context, s Store, data SeedData) (int, error) {
	inserted := 0
	track := func(err error) error {
		switch {
		case err == nil:
			inserted++
		case errors.Is(err, ErrDuplicate):
		default:
			return err
		}
		return nil
	}

	for _, u := range data.Users {
		if err := track(s.Users.InsertUser(ctx, u)); err != nil {
			return inserted, fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}
	for _, v := range data.Vehicles {
		if err := track(s.Vehicles.InsertVehicle(ctx, v)); err != nil {
			return inserted, fmt.Errorf("seed vehicle %s: %w", v.ID, err)
		}
	}
	for _, t := range data.Trips {
		if err := track(s.Trips.InsertTrip(ctx, t)); err != nil {
			return inserted, fmt.Errorf("seed trip %s: %w", t.ID, err)
		}
	}
	return inserted, nil
}
