package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ukydev/ride-booking/internal/app"
	"github.com/ukydev/ride-booking/internal/auth"
	"github.com/ukydev/ride-booking/internal/dataset"
	"github.com/ukydev/ride-booking/internal/db"
	"github.com/ukydev/ride-booking/internal/ledger"
)

const testPassword = "password123"

type testServer struct {
	handler  http.Handler
	store    db.Store
	ledger   *ledger.Ledger
	registry *app.Registry
	data     *dataset.Dataset
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	data, err := dataset.Load()
	require.NoError(t, err)
	authService := auth.NewService("test-secret", time.Hour)
	users, err := dataset.WithPasswords(data.Users, testPassword, authService.HashPassword)
	require.NoError(t, err)

	store := db.NewMemoryStore()
	_, err = db.Seed(ctx, store, db.SeedData{Users: users, Vehicles: data.Vehicles, Trips: data.Trips})
	require.NoError(t, err)
	trips, err := store.Trips.FindTrips(ctx)
	require.NoError(t, err)

	l := ledger.New(trips)
	registry := app.NewRegistry(app.Deps{
		Auth:   authService,
		Store:  store,
		Ledger: l,
		Places: app.NewPlaces(data.Places),
	})
	handler := NewRouter(RouterConfig{
		AuthService:       authService,
		Registry:          registry,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	})
	return &testServer{handler: handler, store: store, ledger: l, registry: registry, data: data}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewBuffer(data)
		}
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
