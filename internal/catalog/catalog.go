// Package catalog tracks the vehicles visible to one session, the active
// type filter and the selected vehicle. A Catalog has a single owner and is
// not safe for concurrent use.
package catalog

import (
	"errors"
	"fmt"

	"github.com/ukydev/ride-booking/internal/geo"
	"github.com/ukydev/ride-booking/internal/models"
)

var ErrInvalidVehicleType = errors.New("invalid vehicle type")

// Marker is what a map needs to draw one vehicle.
type Marker struct {
	VehicleID   string             `json:"vehicleId"`
	Type        models.VehicleType `json:"type"`
	Position    models.Coordinate  `json:"position"`
	IsAvailable bool               `json:"isAvailable"`
	Selected    bool               `json:"selected"`
}

// NearbyVehicle pairs a vehicle with its distance from a query point.
type NearbyVehicle struct {
	Vehicle    models.Vehicle `json:"vehicle"`
	DistanceKm float64        `json:"distanceKm"`
}

type Catalog struct {
	vehicles []models.Vehicle
	filtered []models.Vehicle
	filter   models.VehicleType
	selected *models.Vehicle
}

// New snapshots the given vehicles; later changes to the slice are not seen.
func New(vehicles []models.Vehicle) *Catalog {
	all := append([]models.Vehicle(nil), vehicles...)
	return &Catalog{
		vehicles: all,
		filtered: all,
		filter:   models.VehicleTypeAll,
	}
}

// FilterByType narrows the visible vehicles to one type, or resets with "all".
func (c *Catalog) FilterByType(vt models.VehicleType) error {
	if vt == models.VehicleTypeAll || vt == "" {
		c.filter = models.VehicleTypeAll
		c.filtered = c.vehicles
		return nil
	}
	if !models.IsValidVehicleType(vt) {
		return fmt.Errorf("%w: %q", ErrInvalidVehicleType, vt)
	}

	filtered := make([]models.Vehicle, 0, len(c.vehicles))
	for _, v := range c.vehicles {
		if v.Type == vt {
			filtered = append(filtered, v)
		}
	}
	c.filter = vt
	c.filtered = filtered
	return nil
}

// Select marks the vehicle with the given id as selected. An unknown id
// clears the selection and reports false.
func (c *Catalog) Select(vehicleID string) bool {
	v, ok := c.Find(vehicleID)
	c.selected = v
	return ok
}

// Find returns a copy of the vehicle with the given id.
func (c *Catalog) Find(vehicleID string) (*models.Vehicle, bool) {
	for _, v := range c.vehicles {
		if v.ID == vehicleID {
			return &v, true
		}
	}
	return nil, false
}

// Selected returns a copy of the selected vehicle, or nil.
func (c *Catalog) Selected() *models.Vehicle {
	if c.selected == nil {
		return nil
	}
	v := *c.selected
	return &v
}

func (c *Catalog) ClearSelection() {
	c.selected = nil
}

func (c *Catalog) Filter() models.VehicleType {
	return c.filter
}

// Vehicles returns the full catalog.
func (c *Catalog) Vehicles() []models.Vehicle {
	return append([]models.Vehicle(nil), c.vehicles...)
}

// Filtered returns the vehicles matching the active filter.
func (c *Catalog) Filtered() []models.Vehicle {
	return append([]models.Vehicle(nil), c.filtered...)
}

// Markers returns one marker per filtered vehicle.
func (c *Catalog) Markers() []Marker {
	markers := make([]Marker, 0, len(c.filtered))
	for _, v := range c.filtered {
		markers = append(markers, Marker{
			VehicleID:   v.ID,
			Type:        v.Type,
			Position:    v.Position(),
			IsAvailable: v.IsAvailable,
			Selected:    c.selected != nil && c.selected.ID == v.ID,
		})
	}
	return markers
}

// Nearby returns available filtered vehicles within radiusKm of center, nearest first.
func (c *Catalog) Nearby(center models.Coordinate, radiusKm float64) []NearbyVehicle {
	out := []NearbyVehicle{}
	for _, v := range c.filtered {
		if !v.IsAvailable {
			continue
		}
		d := geo.HaversineKm(center, v.Position())
		if d <= radiusKm {
			out = append(out, NearbyVehicle{Vehicle: v, DistanceKm: d})
		}
	}
	geo.SortByDistance(out, func(n NearbyVehicle) float64 { return n.DistanceKm })
	return out
}
