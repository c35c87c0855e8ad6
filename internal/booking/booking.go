// Package booking prices a trip for one vehicle between two locations.
package booking

import (
	"errors"
	"fmt"
	"math"

	"github.com/ukydev/ride-booking/internal/geo"
	"github.com/ukydev/ride-booking/internal/models"
)

var (
	ErrNoVehicle          = errors.New("no vehicle selected")
	ErrMissingLocation    = errors.New("start and end locations are required")
	ErrUnknownVehicleType = errors.New("unknown vehicle type")
)

// average speeds in km/h
var speeds = map[models.VehicleType]float64{
	models.VehicleCar:     30,
	models.VehicleScooter: 15,
	models.VehicleBike:    12,
}

var baseFares = map[models.VehicleType]float64{
	models.VehicleCar:     5.00,
	models.VehicleScooter: 2.00,
	models.VehicleBike:    1.00,
}

// DistanceKm returns the great-circle distance between two coordinates.
func DistanceKm(a, b models.Coordinate) float64 {
	return geo.HaversineKm(a, b)
}

// EstimateDurationMin returns the ride time in whole minutes, rounded up.
// Unknown vehicle types yield 0.
func EstimateDurationMin(distanceKm float64, vt models.VehicleType) int {
	speed, ok := speeds[vt]
	if !ok {
		return 0
	}
	return int(math.Ceil(distanceKm / speed * 60))
}

// BaseFare returns the flat fee for a vehicle type.
func BaseFare(vt models.VehicleType) (float64, bool) {
	fare, ok := baseFares[vt]
	return fare, ok
}

// EstimateCost returns base fare + distance + time charges rounded to cents.
// Unknown vehicle types carry no base fare.
func EstimateCost(distanceKm float64, durationMin int, v models.Vehicle) float64 {
	base, _ := BaseFare(v.Type)
	return round2(base + distanceKm*v.PricePerKm + float64(durationMin)*v.PricePerMinute)
}

// CreateBooking builds a price estimate for the vehicle between start and end.
func CreateBooking(v *models.Vehicle, start, end *models.Location) (*models.BookingEstimate, error) {
	if v == nil {
		return nil, ErrNoVehicle
	}
	if start == nil || end == nil {
		return nil, ErrMissingLocation
	}
	if _, ok := BaseFare(v.Type); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVehicleType, v.Type)
	}

	distance := DistanceKm(start.Coordinate(), end.Coordinate())
	duration := EstimateDurationMin(distance, v.Type)

	return &models.BookingEstimate{
		VehicleID:            v.ID,
		StartLocation:        *start,
		EndLocation:          *end,
		EstimatedDistanceKm:  round2(distance),
		EstimatedDurationMin: duration,
		EstimatedCost:        EstimateCost(distance, duration, *v),
	}, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
