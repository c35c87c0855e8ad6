package models

import (
	"errors"
	"fmt"
)

// VehicleType is the kind of rentable vehicle.
type VehicleType string

const (
	VehicleCar     VehicleType = "car"
	VehicleScooter VehicleType = "scooter"
	VehicleBike    VehicleType = "bike"

	// VehicleTypeAll is the catalog filter value that matches every type.
	VehicleTypeAll VehicleType = "all"
)

var ErrInvalidVehicle = errors.New("invalid vehicle")

// Vehicle represents a rentable car, scooter or bike.
type Vehicle struct {
	ID             string      `bson:"_id" json:"id"`
	Type           VehicleType `bson:"type" json:"type"`
	Model          string      `bson:"model" json:"model"`
	LicensePlate   string      `bson:"license_plate,omitempty" json:"licensePlate,omitempty"`
	PricePerMinute float64     `bson:"price_per_minute" json:"pricePerMinute"`
	PricePerKm     float64     `bson:"price_per_km" json:"pricePerKm"`
	BatteryLevel   float64     `bson:"battery_level" json:"batteryLevel"` // percent
	Range          float64     `bson:"range" json:"range"`                // km
	Latitude       float64     `bson:"latitude" json:"latitude"`
	Longitude      float64     `bson:"longitude" json:"longitude"`
	IsAvailable    bool        `bson:"is_available" json:"isAvailable"`
	ImageURL       string      `bson:"image_url" json:"imageUrl"`
}

// Position returns the vehicle's current coordinate.
func (v Vehicle) Position() Coordinate {
	return Coordinate{Lat: v.Latitude, Lon: v.Longitude}
}

// Validate checks the vehicle's pricing, battery and position attributes.
func (v Vehicle) Validate() error {
	switch {
	case v.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidVehicle)
	case !IsValidVehicleType(v.Type):
		return fmt.Errorf("%w: unknown type %q", ErrInvalidVehicle, v.Type)
	case v.PricePerMinute < 0 || v.PricePerKm < 0:
		return fmt.Errorf("%w: negative price", ErrInvalidVehicle)
	case v.BatteryLevel < 0 || v.BatteryLevel > 100:
		return fmt.Errorf("%w: battery level %f out of range", ErrInvalidVehicle, v.BatteryLevel)
	case v.Range < 0:
		return fmt.Errorf("%w: negative range", ErrInvalidVehicle)
	}
	return v.Position().Validate()
}

// IsValidVehicleType checks if a vehicle type is one of car, scooter or bike
func IsValidVehicleType(t VehicleType) bool {
	switch t {
	case VehicleCar, VehicleScooter, VehicleBike:
		return true
	default:
		return false
	}
}
