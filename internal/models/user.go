package models

import (
	"errors"
	"fmt"
	"time"
)

// PaymentType represents the kind of a stored payment method
type PaymentType string

const (
	PaymentCredit PaymentType = "credit"
	PaymentDebit  PaymentType = "debit"
	PaymentPayPal PaymentType = "paypal"
)

var (
	ErrMultipleDefaultPayments = errors.New("more than one default payment method")
	ErrDuplicatePaymentID      = errors.New("duplicate payment method id")
	ErrDuplicateLocationID     = errors.New("duplicate favorite location id")
)

// PaymentMethod represents a card or wallet saved on a user account
type PaymentMethod struct {
	ID         string      `bson:"id" json:"id"`
	Type       PaymentType `bson:"type" json:"type"`
	LastFour   string      `bson:"last_four" json:"lastFour"`
	ExpiryDate string      `bson:"expiry_date,omitempty" json:"expiryDate,omitempty"`
	IsDefault  bool        `bson:"is_default" json:"isDefault"`
}

// User represents a rider account
type User struct {
	ID                string          `bson:"_id" json:"id"`
	Name              string          `bson:"name" json:"name"`
	Email             string          `bson:"email" json:"email"`
	Phone             string          `bson:"phone" json:"phone"`
	AvatarURL         string          `bson:"avatar_url" json:"avatarUrl"`
	PasswordHash      string          `bson:"password_hash" json:"-"`
	PaymentMethods    []PaymentMethod `bson:"payment_methods" json:"paymentMethods"`
	FavoriteLocations []Location      `bson:"favorite_locations" json:"favoriteLocations"`
	LastLogin         *time.Time      `bson:"last_login,omitempty" json:"lastLogin,omitempty"`
	CreatedAt         time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time       `bson:"updated_at" json:"updatedAt"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest represents a signup form submission
type SignupRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,phone"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

// ProfileUpdate carries the fields a user may change on their profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name              *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Email             *string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone             *string          `json:"phone,omitempty" validate:"omitempty,phone"`
	AvatarURL         *string          `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	PaymentMethods    *[]PaymentMethod `json:"paymentMethods,omitempty"`
	FavoriteLocations *[]Location      `json:"favoriteLocations,omitempty"`
}

// LoginResponse represents a successful login or signup response
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Claims represents the persisted session record carried in the JWT
type Claims struct {
	SessionID  string    `json:"session_id"`
	UserID     string    `json:"user_id"`
	LoggedInAt time.Time `json:"logged_in_at"`
	Exp        int64     `json:"exp"`
}

// Validate checks payment method and favorite location invariants
func (u *User) Validate() error {
	defaults := 0
	paymentIDs := make(map[string]struct{}, len(u.PaymentMethods))
	for _, pm := range u.PaymentMethods {
		if _, dup := paymentIDs[pm.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePaymentID, pm.ID)
		}
		paymentIDs[pm.ID] = struct{}{}
		if pm.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		return ErrMultipleDefaultPayments
	}

	locationIDs := make(map[string]struct{}, len(u.FavoriteLocations))
	for _, loc := range u.FavoriteLocations {
		if _, dup := locationIDs[loc.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateLocationID, loc.ID)
		}
		locationIDs[loc.ID] = struct{}{}
		if err := loc.Validate(); err != nil {
			return fmt.Errorf("favorite location %s: %w", loc.ID, err)
		}
	}
	return nil
}

// DefaultPaymentMethod returns the payment method flagged as default, if any
func (u *User) DefaultPaymentMethod() (PaymentMethod, bool) {
	for _, pm := range u.PaymentMethods {
		if pm.IsDefault {
			return pm, true
		}
	}
	return PaymentMethod{}, false
}

// DefaultStartLocation returns the home location, falling back to the first favorite.
func (u *User) DefaultStartLocation() (Location, bool) {
	for _, loc := range u.FavoriteLocations {
		if loc.Type == LocationHome {
			return loc, true
		}
	}
	if len(u.FavoriteLocations) > 0 {
		return u.FavoriteLocations[0], true
	}
	return Location{}, false
}

// Clone returns a deep copy so callers can't mutate shared slices.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PaymentMethods = append([]PaymentMethod(nil), u.PaymentMethods...)
	c.FavoriteLocations = append([]Location(nil), u.FavoriteLocations...)
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}

// Apply merges a profile update into the user.
func (u *User) Apply(p ProfileUpdate) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.PaymentMethods != nil {
		u.PaymentMethods = append([]PaymentMethod(nil), (*p.PaymentMethods)...)
	}
	if p.FavoriteLocations != nil {
		u.FavoriteLocations = append([]Location(nil), (*p.FavoriteLocations)...)
	}
}
