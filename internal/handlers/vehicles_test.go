package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/ride-booking/internal/catalog"
	"github.com/ukydev/ride-booking/internal/models"
)

func TestVehicleHandler_List(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantLen  int
	}{
		{"all by default", "", http.StatusOK, 7},
		{"explicit all", "?type=all", http.StatusOK, 7},
		{"cars", "?type=car", http.StatusOK, 3},
		{"scooters", "?type=scooter", http.StatusOK, 2},
		{"bikes", "?type=bike", http.StatusOK, 2},
		{"invalid type", "?type=boat", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, http.MethodGet, "/api/vehicles"+tt.query, "", nil)
			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Len(t, decode[[]models.Vehicle](t, w), tt.wantLen)
			}
		})
	}
}

func TestVehicleHandler_Markers(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "john.doe@example.com")

	w := srv.do(t, http.MethodPost, "/api/vehicles/v4/select", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodGet, "/api/vehicles/markers?type=scooter", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	markers := decode[[]catalog.Marker](t, w)
	require.Len(t, markers, 2)
	for _, m := range markers {
		assert.Equal(t, models.VehicleScooter, m.Type)
		assert.Equal(t, m.VehicleID == "v4", m.Selected)
	}
}

func TestVehicleHandler_Nearby(t *testing.T) {
	srv := newTestServer(t)

	t.Run("around times square", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/vehicles/nearby?lat=40.7580&lon=-73.9855&radius_km=1", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		nearby := decode[[]catalog.NearbyVehicle](t, w)
		require.NotEmpty(t, nearby)
		assert.Equal(t, "v1", nearby[0].Vehicle.ID)
		for i := 1; i < len(nearby); i++ {
			assert.LessOrEqual(t, nearby[i-1].DistanceKm, nearby[i].DistanceKm)
			assert.True(t, nearby[i].Vehicle.IsAvailable)
		}
	})

	t.Run("missing coordinates", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/vehicles/nearby?lat=40.7", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("latitude out of range", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/vehicles/nearby?lat=140&lon=0", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad radius", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/vehicles/nearby?lat=40.7&lon=-73.9&radius_km=-1", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVehicleHandler_Select(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "john.doe@example.com")

	t.Run("requires login", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/vehicles/v1/select", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("known vehicle", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/vehicles/v1/select", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Tesla Model 3", decode[models.Vehicle](t, w).Model)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/vehicles/v99/select", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
