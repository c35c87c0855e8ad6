package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/ride-booking/internal/app"
	"github.com/ukydev/ride-booking/internal/auth"
	"github.com/ukydev/ride-booking/internal/config"
	"github.com/ukydev/ride-booking/internal/dataset"
	"github.com/ukydev/ride-booking/internal/db"
	"github.com/ukydev/ride-booking/internal/events"
	"github.com/ukydev/ride-booking/internal/handlers"
	"github.com/ukydev/ride-booking/internal/ledger"
)

const shutdownTimeout = 10 * time.Second

// service is everything the HTTP server needs, plus what to close on exit.
type service struct {
	handler  http.Handler
	registry *app.Registry
	closers  []func()
}

func (s *service) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if err := cfg.SetupLogging(); err != nil {
		log.WithError(err).Fatal("Invalid logging configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           svc.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newService(ctx context.Context, cfg config.Config) (*service, error) {
	svc := &service{}

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, using the development secret")
	}
	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)

	store, err := openStore(ctx, cfg, svc)
	if err != nil {
		svc.Close()
		return nil, err
	}

	data, err := dataset.Load()
	if err != nil {
		svc.Close()
		return nil, err
	}
	users, err := dataset.WithPasswords(data.Users, cfg.DemoPassword, authService.HashPassword)
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	inserted, err := db.Seed(ctx, store, db.SeedData{Users: users, Vehicles: data.Vehicles, Trips: data.Trips})
	if err != nil {
		svc.Close()
		return nil, err
	}
	log.WithField("inserted", inserted).Info("Seed data loaded")

	trips, err := store.Trips.FindTrips(ctx)
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("load trips: %w", err)
	}

	svc.registry = app.NewRegistry(app.Deps{
		Auth:   authService,
		Store:  store,
		Ledger: ledger.New(trips),
		Events: openPublisher(cfg, svc),
		Places: app.NewPlaces(data.Places),
		AuthOpts: auth.StateOptions{
			Latency:           cfg.AuthLatency,
			AcceptAnyPassword: cfg.AcceptAnyPassword,
		},
	})
	svc.handler = handlers.NewRouter(handlers.RouterConfig{
		AuthService:       authService,
		Registry:          svc.registry,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})
	return svc, nil
}

// openStore connects to MongoDB when MONGO_URI is set and keeps everything
// in memory otherwise.
func openStore(ctx context.Context, cfg config.Config, svc *service) (db.Store, error) {
	if cfg.MongoURI == "" {
		log.Info("MONGO_URI not set, using in-memory storage")
		return db.NewMemoryStore(), nil
	}

	client, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		return db.Store{}, err
	}
	svc.closers = append(svc.closers, func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.WithError(err).Warn("MongoDB disconnect failed")
		}
	})
	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")
	return db.NewMongoStore(ctx, client.Database(cfg.MongoDB))
}

// openPublisher drops events when the broker is unset or unreachable.
func openPublisher(cfg config.Config, svc *service) events.Publisher {
	if cfg.MQTTBroker == "" {
		return events.NopPublisher{}
	}
	client, err := events.Connect(cfg.MQTTBroker, cfg.MQTTClientID, 5*time.Second)
	if err != nil {
		log.WithError(err).Warn("MQTT unavailable, trip events will not be published")
		return events.NopPublisher{}
	}
	svc.closers = append(svc.closers, func() { client.Disconnect(250) })
	log.WithField("broker", cfg.MQTTBroker).Info("Publishing trip events")
	return events.NewMQTTPublisher(client, cfg.MQTTTopicPrefix)
}
