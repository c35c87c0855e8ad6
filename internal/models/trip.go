package models

import (
	"time"
)

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripCompleted  TripStatus = "completed"
	TripInProgress TripStatus = "in-progress"
	TripCancelled  TripStatus = "cancelled"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Trip represents a confirmed booking in a user's history.
type Trip struct {
	ID            string      `json:"id" bson:"_id"`
	UserID        string      `json:"userId" bson:"user_id"`
	VehicleID     string      `json:"vehicleId" bson:"vehicle_id"`
	VehicleType   VehicleType `json:"vehicleType" bson:"vehicle_type"`
	VehicleModel  string      `json:"vehicleModel" bson:"vehicle_model"`
	StartLocation Location    `json:"startLocation" bson:"start_location"`
	EndLocation   Location    `json:"endLocation" bson:"end_location"`
	StartTime     time.Time   `json:"startTime" bson:"start_time"`
	EndTime       time.Time   `json:"endTime" bson:"end_time"`
	Duration      int         `json:"duration" bson:"duration"` // in minutes
	Distance      float64     `json:"distance" bson:"distance"` // in kilometers
	Cost          float64     `json:"cost" bson:"cost"`
	Status        TripStatus  `json:"status" bson:"status"`
	Rating        *int        `json:"rating,omitempty" bson:"rating,omitempty"`
}

// BookingEstimate is a provisional, unconfirmed price quote for one vehicle between two locations.
type BookingEstimate struct {
	VehicleID            string   `json:"vehicleId"`
	StartLocation        Location `json:"startLocation"`
	EndLocation          Location `json:"endLocation"`
	EstimatedDistanceKm  float64  `json:"estimatedDistance"`
	EstimatedDurationMin int      `json:"estimatedDuration"`
	EstimatedCost        float64  `json:"estimatedCost"`
}

// IsValidTripStatus checks if a trip status is valid
func IsValidTripStatus(s TripStatus) bool {
	switch s {
	case TripCompleted, TripInProgress, TripCancelled:
		return true
	default:
		return false
	}
}

// IsValidRating checks a rating is within 1..5
func IsValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// Clone returns a copy that does not share the rating pointer.
func (t Trip) Clone() Trip {
	if t.Rating != nil {
		r := *t.Rating
		t.Rating = &r
	}
	return t
}
