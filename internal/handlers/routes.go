package handlers

import (
	"net/http"
	"time"

	"github.com/ukydev/ride-booking/internal/app"
	"github.com/ukydev/ride-booking/internal/auth"
	"github.com/ukydev/ride-booking/internal/middleware"
)

// RouterConfig carries what NewRouter wires together.
type RouterConfig struct {
	AuthService       *auth.Service
	Registry          *app.Registry
	RateLimitRequests int
	RateLimitWindow   time.Duration
	TrustProxyHeaders bool
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	authMW := middleware.NewAuthMiddleware(cfg.AuthService, cfg.Registry)
	limiter := middleware.NewRateLimitMiddleware(cfg.TrustProxyHeaders).RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow)

	authH := NewAuthHandler(cfg.AuthService, cfg.Registry)
	vehicleH := NewVehicleHandler(cfg.Registry)
	bookingH := NewBookingHandler(cfg.Registry)
	tripH := NewTripHandler()
	locationH := NewLocationHandler(cfg.Registry)

	required := func(h http.HandlerFunc) http.Handler { return authMW.Authenticate(h) }
	optional := func(h http.HandlerFunc) http.Handler { return authMW.Optional(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", Health)

	mux.Handle("POST /api/auth/login", limiter(http.HandlerFunc(authH.Login)))
	mux.Handle("POST /api/auth/signup", limiter(http.HandlerFunc(authH.Signup)))
	mux.Handle("POST /api/auth/logout", required(authH.Logout))
	mux.Handle("GET /api/profile", required(authH.GetProfile))
	mux.Handle("PUT /api/profile", required(authH.UpdateProfile))

	mux.Handle("GET /api/vehicles", optional(vehicleH.List))
	mux.Handle("GET /api/vehicles/markers", optional(vehicleH.Markers))
	mux.Handle("GET /api/vehicles/nearby", optional(vehicleH.Nearby))
	mux.Handle("POST /api/vehicles/{id}/select", required(vehicleH.Select))

	mux.Handle("POST /api/bookings/estimate", optional(bookingH.Estimate))
	mux.Handle("GET /api/bookings/current", required(bookingH.Current))
	mux.Handle("POST /api/bookings/confirm", required(bookingH.Confirm))
	mux.Handle("POST /api/bookings/cancel", required(bookingH.Cancel))

	mux.Handle("GET /api/trips", required(tripH.List))
	mux.Handle("GET /api/trips/history", required(tripH.History))
	mux.Handle("POST /api/trips/{id}/rating", required(tripH.Rate))

	mux.Handle("GET /api/locations/search", optional(locationH.Search))

	return middleware.RequestID(middleware.Logging(mux))
}
