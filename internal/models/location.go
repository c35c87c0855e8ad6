package models

import (
	"errors"
	"fmt"
)

// LocationType classifies a saved or searched place.
type LocationType string

const (
	LocationHome     LocationType = "home"
	LocationWork     LocationType = "work"
	LocationFavorite LocationType = "favorite"
	LocationRecent   LocationType = "recent"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate represents a geographical position with latitude and longitude.
type Coordinate struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lon float64 `bson:"lon" json:"lon"`
}

// Validate checks latitude and longitude ranges.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range", ErrInvalidCoordinate, c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %f out of range", ErrInvalidCoordinate, c.Lon)
	}
	return nil
}

// Location is a named place a trip can start or end at.
type Location struct {
	ID        string       `bson:"id" json:"id"`
	Name      string       `bson:"name" json:"name"`
	Address   string       `bson:"address" json:"address"`
	Latitude  float64      `bson:"latitude" json:"latitude"`
	Longitude float64      `bson:"longitude" json:"longitude"`
	Type      LocationType `bson:"type" json:"type"`
}

// Coordinate returns the location's position.
func (l Location) Coordinate() Coordinate {
	return Coordinate{Lat: l.Latitude, Lon: l.Longitude}
}

// Validate checks the location's coordinate and type.
func (l Location) Validate() error {
	if err := l.Coordinate().Validate(); err != nil {
		return err
	}
	if !IsValidLocationType(l.Type) {
		return fmt.Errorf("invalid location type %q", l.Type)
	}
	return nil
}

// IsValidLocationType checks if a location type is valid
func IsValidLocationType(t LocationType) bool {
	switch t {
	case LocationHome, LocationWork, LocationFavorite, LocationRecent:
		return true
	default:
		return false
	}
}
