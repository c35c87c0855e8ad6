package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/ride-booking/internal/ledger"
	"github.com/ukydev/ride-booking/internal/models"
)

func TestTripHandler_List(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "john.doe@example.com")

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantIDs  []string
	}{
		{"all trips", "", http.StatusOK, []string{"trip1", "trip2", "trip3"}},
		{"completed", "?status=completed", http.StatusOK, []string{"trip1", "trip2"}},
		{"cancelled", "?status=cancelled", http.StatusOK, []string{"trip3"}},
		{"search by model", "?q=tesla", http.StatusOK, []string{"trip1"}},
		{"search by place", "?q=central%20park", http.StatusOK, []string{"trip2"}},
		{"no match", "?q=airport", http.StatusOK, []string{}},
		{"bad status", "?status=lost", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, http.MethodGet, "/api/trips"+tt.query, token, nil)
			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantIDs == nil {
				return
			}
			ids := []string{}
			for _, trip := range decode[[]models.Trip](t, w) {
				ids = append(ids, trip.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	t.Run("other users' trips are hidden", func(t *testing.T) {
		other := srv.login(t, "jane.smith@example.com")
		w := srv.do(t, http.MethodGet, "/api/trips", other, nil)
		require.Equal(t, http.StatusOK, w.Code)
		for _, trip := range decode[[]models.Trip](t, w) {
			assert.Equal(t, "user2", trip.UserID)
		}
	})

	t.Run("requires login", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/api/trips", "", nil).Code)
	})
}

func TestTripHandler_History(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "john.doe@example.com")

	w := srv.do(t, http.MethodGet, "/api/trips/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	groups := decode[[]ledger.DayGroup](t, w)
	require.Len(t, groups, 2)
	assert.Equal(t, "2024-03-12", groups[0].Date)
	assert.Len(t, groups[0].Trips, 2)
	assert.Equal(t, "2024-03-10", groups[1].Date)
}

func TestTripHandler_Rate(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "john.doe@example.com")

	tests := []struct {
		name     string
		tripID   string
		body     interface{}
		wantCode int
	}{
		{"rate completed trip", "trip2", RateRequest{Rating: 4}, http.StatusOK},
		{"overwrite rating", "trip1", RateRequest{Rating: 3}, http.StatusOK},
		{"rating too high", "trip2", RateRequest{Rating: 6}, http.StatusBadRequest},
		{"rating too low", "trip2", RateRequest{Rating: 0}, http.StatusBadRequest},
		{"cancelled trip", "trip3", RateRequest{Rating: 4}, http.StatusConflict},
		{"unknown trip", "trip99", RateRequest{Rating: 4}, http.StatusNotFound},
		{"another user's trip", "trip4", RateRequest{Rating: 4}, http.StatusNotFound},
		{"invalid JSON", "trip2", "{", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := srv.ledger.Len()
			w := srv.do(t, http.MethodPost, "/api/trips/"+tt.tripID+"/rating", token, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, before, srv.ledger.Len())
		})
	}

	trip2, ok := srv.ledger.Get("trip2")
	require.True(t, ok)
	require.NotNil(t, trip2.Rating)
	assert.Equal(t, 4, *trip2.Rating)

	trip4, _ := srv.ledger.Get("trip4")
	assert.Nil(t, trip4.Rating)
}
