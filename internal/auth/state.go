package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/ride-booking/internal/db"
	"github.com/ukydev/ride-booking/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// DefaultLatency mimics a remote identity provider round trip.
const DefaultLatency = 800 * time.Millisecond

// StateOptions tunes login behaviour.
type StateOptions struct {
	Latency time.Duration
	// AcceptAnyPassword signs in any known email regardless of the password.
	AcceptAnyPassword bool
}

// State holds the identity of one session. It is not safe for concurrent
// use; the owning session serializes calls.
type State struct {
	svc   *Service
	users db.UserCollection
	opts  StateOptions

	user   *models.User
	claims *models.Claims
}

// NewState creates a signed-out identity.
func NewState(svc *Service, users db.UserCollection, opts StateOptions) *State {
	return &State{svc: svc, users: users, opts: opts}
}

// Login signs in the user with the given email. On failure the current
// identity is left as it was.
func (s *State) Login(ctx context.Context, email, password string) (*models.User, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	user, err := s.users.FindUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !s.opts.AcceptAnyPassword && (user.PasswordHash == "" || !s.svc.CheckPassword(password, user.PasswordHash)) {
		return nil, ErrInvalidCredentials
	}

	s.signIn(ctx, user)
	return user.Clone(), nil
}

// Signup registers a new user and signs them in.
func (s *State) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.svc.ValidateSignup(req); err != nil {
		return nil, err
	}

	hash, err := s.svc.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := models.User{
		ID:                uuid.NewString(),
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		PasswordHash:      hash,
		PaymentMethods:    []models.PaymentMethod{},
		FavoriteLocations: []models.Location{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.users.InsertUser(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.signIn(ctx, &user)
	return user.Clone(), nil
}

func (s *State) signIn(ctx context.Context, user *models.User) {
	claims := s.svc.NewClaims(user.ID)
	if err := s.users.UpdateLastLogin(ctx, user.ID, claims.LoggedInAt); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	} else {
		at := claims.LoggedInAt
		user.LastLogin = &at
	}
	s.user = user.Clone()
	s.claims = &claims
}

// Logout clears the identity.
func (s *State) Logout() {
	s.user = nil
	s.claims = nil
}

// UpdateProfile merges the provided fields into the signed-in user and stores them.
func (s *State) UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.User, error) {
	if s.user == nil {
		return nil, ErrNotAuthenticated
	}

	merged := s.user.Clone()
	merged.Apply(p)
	if err := s.svc.ValidateProfile(p, merged); err != nil {
		return nil, err
	}
	merged.UpdatedAt = time.Now().UTC()
	if err := s.users.UpdateUser(ctx, *merged); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.user = merged
	return merged.Clone(), nil
}

// Restore re-establishes the identity from a previously issued session
// record. When the user no longer exists the state stays signed out.
func (s *State) Restore(ctx context.Context, claims models.Claims) error {
	user, err := s.users.FindUserByID(ctx, claims.UserID)
	if err != nil {
		s.Logout()
		return fmt.Errorf("restore session %s: %w", claims.SessionID, err)
	}
	s.user = user
	s.claims = &claims
	return nil
}

// Current returns a copy of the signed-in user, or nil.
func (s *State) Current() *models.User {
	return s.user.Clone()
}

func (s *State) IsAuthenticated() bool {
	return s.user != nil
}

// Claims returns the session record of the signed-in user.
func (s *State) Claims() (models.Claims, bool) {
	if s.claims == nil {
		return models.Claims{}, false
	}
	return *s.claims, true
}

// Token signs the current session record.
func (s *State) Token() (string, error) {
	if s.claims == nil {
		return "", ErrNotAuthenticated
	}
	return s.svc.GenerateToken(*s.claims)
}

func (s *State) wait(ctx context.Context) error {
	if s.opts.Latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.opts.Latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
