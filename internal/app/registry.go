package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/ride-booking/internal/auth"
	"github.com/ukydev/ride-booking/internal/catalog"
	"github.com/ukydev/ride-booking/internal/db"
	"github.com/ukydev/ride-booking/internal/events"
	"github.com/ukydev/ride-booking/internal/ledger"
	"github.com/ukydev/ride-booking/internal/models"
)

var (
	ErrSessionRevoked = errors.New("session has been logged out")
	ErrSessionExpired = errors.New("session has expired")
)

// Deps are the collaborators shared by every session.
type Deps struct {
	Auth     *auth.Service
	Store    db.Store
	Ledger   *ledger.Ledger
	Events   events.Publisher
	Places   *Places
	AuthOpts auth.StateOptions
	Now      func() time.Time
}

// Registry maps session ids to live sessions. Sessions lost on restart are
// rebuilt from their signed record on first use.
type Registry struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Session
	expires  map[string]time.Time // session id -> token expiry
	revoked  map[string]time.Time // session id -> token expiry
}

// NewRegistry creates an empty registry.
func NewRegistry(deps Deps) *Registry {
	if deps.Events == nil {
		deps.Events = events.NopPublisher{}
	}
	if deps.Places == nil {
		deps.Places = NewPlaces(nil)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Registry{
		deps:     deps,
		sessions: make(map[string]*Session),
		expires:  make(map[string]time.Time),
		revoked:  make(map[string]time.Time),
	}
}

// NewSession creates a signed-out session with a fresh vehicle snapshot.
func (r *Registry) NewSession(ctx context.Context) (*Session, error) {
	vehicles, err := r.deps.Store.Vehicles.FindVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vehicles: %w", err)
	}
	return &Session{
		auth:    auth.NewState(r.deps.Auth, r.deps.Store.Users, r.deps.AuthOpts),
		catalog: catalog.New(vehicles),
		ledger:  r.deps.Ledger,
		trips:   r.deps.Store.Trips,
		events:  r.deps.Events,
		places:  r.deps.Places,
		now:     r.deps.Now,
	}, nil
}

// Login signs in on a new session and registers it.
func (r *Registry) Login(ctx context.Context, email, password string) (*Session, string, error) {
	s, err := r.NewSession(ctx)
	if err != nil {
		return nil, "", err
	}
	if _, err := s.login(ctx, email, password); err != nil {
		return nil, "", err
	}
	return r.register(s)
}

// Signup creates an account on a new session and registers it.
func (r *Registry) Signup(ctx context.Context, req models.SignupRequest) (*Session, string, error) {
	s, err := r.NewSession(ctx)
	if err != nil {
		return nil, "", err
	}
	if _, err := s.signup(ctx, req); err != nil {
		return nil, "", err
	}
	return r.register(s)
}

func (r *Registry) register(s *Session) (*Session, string, error) {
	token, err := s.Token()
	if err != nil {
		return nil, "", err
	}
	claims, _ := s.Claims()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	r.addLocked(s, claims)
	return s, token, nil
}

// Resolve returns the session for a validated record, restoring it when
// this process has not seen it yet.
func (r *Registry) Resolve(ctx context.Context, claims models.Claims) (*Session, error) {
	r.mu.Lock()
	r.pruneLocked()
	if _, gone := r.revoked[claims.SessionID]; gone {
		r.mu.Unlock()
		return nil, ErrSessionRevoked
	}
	if expired(claims, r.deps.Now()) {
		r.mu.Unlock()
		return nil, ErrSessionExpired
	}
	if s, ok := r.sessions[claims.SessionID]; ok {
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	s, err := r.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.restore(ctx, claims); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[claims.SessionID]; ok {
		return existing, nil
	}
	r.addLocked(s, claims)
	log.WithFields(log.Fields{"session_id": claims.SessionID, "user_id": claims.UserID}).Info("session restored")
	return s, nil
}

// Logout signs the session out and refuses its token from now on.
func (r *Registry) Logout(s *Session) {
	id := s.ID()
	s.Logout()
	if id == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	delete(r.expires, id)
	r.revoked[id] = r.deps.Now().Add(r.deps.Auth.TokenExpiry())
	r.pruneLocked()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) addLocked(s *Session, claims models.Claims) {
	r.sessions[claims.SessionID] = s
	if claims.Exp != 0 {
		r.expires[claims.SessionID] = time.Unix(claims.Exp, 0)
	}
}

// pruneLocked drops sessions and revocations whose tokens have expired.
func (r *Registry) pruneLocked() {
	now := r.deps.Now()
	for id, exp := range r.expires {
		if !now.Before(exp) {
			delete(r.expires, id)
			delete(r.sessions, id)
		}
	}
	for id, exp := range r.revoked {
		if now.After(exp) {
			delete(r.revoked, id)
		}
	}
}

func expired(claims models.Claims, now time.Time) bool {
	return claims.Exp != 0 && !now.Before(time.Unix(claims.Exp, 0))
}
