// Command simulator drives the booking API with synthetic riders: each one
// logs in, picks the nearest vehicle, books a trip across Manhattan and
// rates it.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/ride-booking/internal/catalog"
	"github.com/ukydev/ride-booking/internal/models"
)

// landmarks trips start and end near
var landmarks = []models.Location{
	{ID: "search-1", Name: "Central Park", Latitude: 40.7812, Longitude: -73.9665, Type: models.LocationRecent},
	{ID: "search-2", Name: "Empire State Building", Latitude: 40.7484, Longitude: -73.9857, Type: models.LocationRecent},
	{ID: "search-3", Name: "Times Square", Latitude: 40.7580, Longitude: -73.9855, Type: models.LocationRecent},
	{ID: "search-4", Name: "Brooklyn Bridge", Latitude: 40.7061, Longitude: -73.9969, Type: models.LocationRecent},
	{ID: "search-5", Name: "Grand Central Terminal", Latitude: 40.7527, Longitude: -73.9772, Type: models.LocationRecent},
}

var errStatus = errors.New("unexpected status")

func jitterLocation(base models.Location, meters float64, rng *rand.Rand) models.Location {
	latMetersPerDeg := 111320.0
	lonMetersPerDeg := 111320.0 * math.Cos(base.Latitude*math.Pi/180)
	out := base
	out.Latitude += (rng.Float64()*2 - 1) * (meters / latMetersPerDeg)
	out.Longitude += (rng.Float64()*2 - 1) * (meters / lonMetersPerDeg)
	return out
}

// apiClient is one rider's connection to the API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out interface{}, want int) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%w: %s %s returned %d: %s", errStatus, method, path, resp.StatusCode, e.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *apiClient) login(ctx context.Context, email, password string) (*models.User, error) {
	var resp models.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, &resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp.User, nil
}

func (c *apiClient) nearby(ctx context.Context, at models.Location, radiusKm float64) ([]catalog.NearbyVehicle, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(at.Latitude, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(at.Longitude, 'f', 6, 64))
	q.Set("radius_km", strconv.FormatFloat(radiusKm, 'f', 2, 64))
	var out []catalog.NearbyVehicle
	if err := c.do(ctx, http.MethodGet, "/vehicles/nearby?"+q.Encode(), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *apiClient) selectVehicle(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/vehicles/"+url.PathEscape(id)+"/select", nil, nil, http.StatusOK)
}

func (c *apiClient) estimate(ctx context.Context, start, end models.Location) (*models.BookingEstimate, error) {
	var resp struct {
		Estimate *models.BookingEstimate `json:"estimate"`
	}
	body := map[string]models.Location{"startLocation": start, "endLocation": end}
	if err := c.do(ctx, http.MethodPost, "/bookings/estimate", body, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	if resp.Estimate == nil {
		return nil, fmt.Errorf("estimate missing from response")
	}
	return resp.Estimate, nil
}

func (c *apiClient) confirm(ctx context.Context) (*models.Trip, error) {
	var trip models.Trip
	if err := c.do(ctx, http.MethodPost, "/bookings/confirm", nil, &trip, http.StatusCreated); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (c *apiClient) cancel(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/bookings/cancel", nil, nil, http.StatusOK)
}

func (c *apiClient) rate(ctx context.Context, tripID string, rating int) error {
	return c.do(ctx, http.MethodPost, "/trips/"+url.PathEscape(tripID)+"/rating", map[string]int{"rating": rating}, nil, http.StatusOK)
}

// rider books trips one after another.
type rider struct {
	email  string
	client *apiClient
	rng    *rand.Rand
}

// bookTrip runs one full booking. It returns the confirmed trip.
func (r *rider) bookTrip(ctx context.Context) (*models.Trip, error) {
	startIdx := r.rng.Intn(len(landmarks))
	endIdx := (startIdx + 1 + r.rng.Intn(len(landmarks)-1)) % len(landmarks)
	start := jitterLocation(landmarks[startIdx], 300, r.rng)
	end := jitterLocation(landmarks[endIdx], 300, r.rng)

	vehicles, err := r.client.nearby(ctx, start, 3)
	if err != nil {
		return nil, err
	}
	if len(vehicles) == 0 {
		return nil, fmt.Errorf("no vehicle near %s", landmarks[startIdx].Name)
	}
	vehicle := vehicles[0].Vehicle
	if err := r.client.selectVehicle(ctx, vehicle.ID); err != nil {
		return nil, err
	}

	est, err := r.client.estimate(ctx, start, end)
	if err != nil {
		return nil, err
	}
	trip, err := r.client.confirm(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.client.cancel(ctx); err != nil {
		log.WithError(err).WithField("email", r.email).Warn("Failed to leave booking flow")
	}

	log.WithFields(log.Fields{
		"email":       r.email,
		"trip_id":     trip.ID,
		"vehicle_id":  vehicle.ID,
		"from":        landmarks[startIdx].Name,
		"to":          landmarks[endIdx].Name,
		"distance_km": est.EstimatedDistanceKm,
		"cost":        est.EstimatedCost,
	}).Info("Booked trip")

	if trip.Status == models.TripCompleted {
		if err := r.client.rate(ctx, trip.ID, 3+r.rng.Intn(3)); err != nil {
			log.WithError(err).WithField("trip_id", trip.ID).Warn("Failed to rate trip")
		}
	}
	return trip, nil
}

// run books up to maxTrips trips (0 means until ctx ends), one per tick.
func (r *rider) run(ctx context.Context, interval time.Duration, maxTrips int) int {
	booked := 0
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for maxTrips == 0 || booked < maxTrips {
		if _, err := r.bookTrip(ctx); err != nil {
			if ctx.Err() != nil {
				return booked
			}
			log.WithError(err).WithField("email", r.email).Error("Booking failed")
		} else {
			booked++
		}
		select {
		case <-ctx.Done():
			return booked
		case <-tick.C:
		}
	}
	return booked
}

type simConfig struct {
	apiURL   string
	emails   []string
	password string
	interval time.Duration
	maxTrips int
}

func loadSimConfig() simConfig {
	cfg := simConfig{
		apiURL:   os.Getenv("API_BASE_URL"),
		password: os.Getenv("SIM_PASSWORD"),
		interval: 5 * time.Second,
	}
	if cfg.apiURL == "" {
		cfg.apiURL = "http://localhost:8080/api"
	}
	if cfg.password == "" {
		cfg.password = "password123"
	}
	riders := os.Getenv("SIM_RIDERS")
	if riders == "" {
		riders = "john.doe@example.com,jane.smith@example.com"
	}
	for _, e := range strings.Split(riders, ",") {
		if e = strings.TrimSpace(e); e != "" {
			cfg.emails = append(cfg.emails, e)
		}
	}
	if v := os.Getenv("SIM_TICK_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			cfg.interval = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("SIM_TRIPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.maxTrips = n
		}
	}
	return cfg
}

// simulate logs every rider in and runs them concurrently. It returns the
// number of trips booked.
func simulate(ctx context.Context, cfg simConfig) int {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i, email := range cfg.emails {
		client := newAPIClient(cfg.apiURL)
		if _, err := client.login(ctx, email, cfg.password); err != nil {
			log.WithError(err).WithField("email", email).Error("Login failed")
			continue
		}
		r := &rider{email: email, client: client, rng: rand.New(rand.NewSource(time.Now().UnixNano() + int64(i)))}
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := r.run(ctx, cfg.interval, cfg.maxTrips)
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()
	return total
}

func main() {
	cfg := loadSimConfig()
	log.WithFields(log.Fields{
		"api_url":  cfg.apiURL,
		"riders":   len(cfg.emails),
		"interval": cfg.interval,
		"trips":    cfg.maxTrips,
	}).Info("Starting ride simulation")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	total := simulate(ctx, cfg)
	log.WithField("trips", total).Info("Simulation finished")
}
