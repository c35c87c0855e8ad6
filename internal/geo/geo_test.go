package geo

import (
	"math"
	"testing"

	"github.com/ukydev/ride-booking/internal/models"
)

func TestHaversineKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      models.Coordinate
		wantKm    float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         models.Coordinate{Lat: 40.7812, Lon: -73.9665},
			b:         models.Coordinate{Lat: 40.7812, Lon: -73.9665},
			wantKm:    0,
			tolerance: 1e-9,
		},
		{
			name:      "Central Park to Empire State Building",
			a:         models.Coordinate{Lat: 40.7812, Lon: -73.9665},
			b:         models.Coordinate{Lat: 40.7484, Lon: -73.9857},
			wantKm:    3.99,
			tolerance: 0.01,
		},
		{
			name:      "New York to Los Angeles",
			a:         models.Coordinate{Lat: 40.7128, Lon: -74.0060},
			b:         models.Coordinate{Lat: 34.0522, Lon: -118.2437},
			wantKm:    3944,
			tolerance: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKm(tt.a, tt.b)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("HaversineKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestHaversineKm_Symmetry(t *testing.T) {
	a := models.Coordinate{Lat: 40.0, Lon: -74.0}
	b := models.Coordinate{Lat: 41.0, Lon: -73.0}
	if d1, d2 := HaversineKm(a, b), HaversineKm(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("haversine is not symmetric: %f vs %f", d1, d2)
	}
}

func TestSortByDistance(t *testing.T) {
	items := []float64{5, 1, 3, 1, 0}
	SortByDistance(items, func(f float64) float64 { return f })
	want := []float64{0, 1, 1, 3, 5}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("SortByDistance() = %v, want %v", items, want)
		}
	}
}
