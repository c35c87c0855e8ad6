// Package geo holds pure great-circle helpers.
package geo

import (
	"math"
	"slices"

	"github.com/ukydev/ride-booking/internal/models"
)

const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometres between two coordinates.
func HaversineKm(a, b models.Coordinate) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	h = math.Min(h, 1) // rounding can push near-antipodal pairs past 1
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// SortByDistance orders items nearest first, keeping the input order for ties.
func SortByDistance[T any](items []T, dist func(T) float64) {
	slices.SortStableFunc(items, func(x, y T) int {
		dx, dy := dist(x), dist(y)
		switch {
		case dx < dy:
			return -1
		case dx > dy:
			return 1
		}
		return 0
	})
}
