// Package dataset embeds the static users, vehicles, trips and known places
// the service starts from.
package dataset

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/ukydev/ride-booking/internal/models"
)

//go:embed data/*.json
var files embed.FS

// Dataset is the read-only seed data.
type Dataset struct {
	Users    []models.User
	Vehicles []models.Vehicle
	Trips    []models.Trip
	Places   []models.Location
}

// Load parses and validates the embedded files.
func Load() (*Dataset, error) {
	var users struct {
		Users []models.User `json:"users"`
	}
	var vehicles struct {
		Vehicles []models.Vehicle `json:"vehicles"`
	}
	var trips struct {
		Trips []models.Trip `json:"trips"`
	}
	var places struct {
		Places []models.Location `json:"places"`
	}

	for name, out := range map[string]interface{}{
		"data/users.json":    &users,
		"data/vehicles.json": &vehicles,
		"data/trips.json":    &trips,
		"data/places.json":   &places,
	} {
		if err := decode(name, out); err != nil {
			return nil, err
		}
	}

	ds := &Dataset{
		Users:    users.Users,
		Vehicles: vehicles.Vehicles,
		Trips:    trips.Trips,
		Places:   places.Places,
	}
	if err := ds.validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func decode(name string, out interface{}) error {
	raw, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (d *Dataset) validate() error {
	for i := range d.Users {
		if err := d.Users[i].Validate(); err != nil {
			return fmt.Errorf("user %s: %w", d.Users[i].ID, err)
		}
	}
	seen := make(map[string]bool, len(d.Vehicles))
	for _, v := range d.Vehicles {
		if seen[v.ID] {
			return fmt.Errorf("duplicate vehicle id %s", v.ID)
		}
		seen[v.ID] = true
		if err := v.Validate(); err != nil {
			return err
		}
	}
	for _, t := range d.Trips {
		if !models.IsValidTripStatus(t.Status) {
			return fmt.Errorf("trip %s: invalid status %q", t.ID, t.Status)
		}
		if t.Rating != nil && (!models.IsValidRating(*t.Rating) || t.Status != models.TripCompleted) {
			return fmt.Errorf("trip %s: invalid rating", t.ID)
		}
	}
	for _, p := range d.Places {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("place %s: %w", p.ID, err)
		}
	}
	return nil
}

// WithPasswords returns copies of the users where every account without a
// password hash gets the hash of password.
func WithPasswords(users []models.User, password string, hash func(string) (string, error)) ([]models.User, error) {
	out := make([]models.User, 0, len(users))
	var shared string
	for _, u := range users {
		c := u.Clone()
		if c.PasswordHash == "" {
			if shared == "" {
				h, err := hash(password)
				if err != nil {
					return nil, err
				}
				shared = h
			}
			c.PasswordHash = shared
		}
		out = append(out, *c)
	}
	return out, nil
}
