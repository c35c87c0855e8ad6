package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/ride-booking/internal/models"
)

func testVehicles() []models.Vehicle {
	return []models.Vehicle{
		{ID: "v1", Type: models.VehicleCar, Model: "Tesla Model 3", Latitude: 40.7580, Longitude: -73.9855, IsAvailable: true},
		{ID: "v2", Type: models.VehicleScooter, Model: "Xiaomi Pro 2", Latitude: 40.7590, Longitude: -73.9845, IsAvailable: true},
		{ID: "v3", Type: models.VehicleBike, Model: "Citi Bike", Latitude: 40.7128, Longitude: -74.0060, IsAvailable: true},
		{ID: "v4", Type: models.VehicleCar, Model: "Nissan Leaf", Latitude: 40.7585, Longitude: -73.9850, IsAvailable: false},
	}
}

func ids(vs []models.Vehicle) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.ID)
	}
	return out
}

func TestNew_Snapshot(t *testing.T) {
	vs := testVehicles()
	c := New(vs)
	vs[0].Model = "changed"

	assert.Equal(t, "Tesla Model 3", c.Vehicles()[0].Model)
	assert.Equal(t, models.VehicleTypeAll, c.Filter())
	assert.Len(t, c.Filtered(), 4)
	assert.Nil(t, c.Selected())
}

func TestFilterByType(t *testing.T) {
	c := New(testVehicles())

	require.NoError(t, c.FilterByType(models.VehicleCar))
	assert.Equal(t, []string{"v1", "v4"}, ids(c.Filtered()))
	assert.Equal(t, models.VehicleCar, c.Filter())

	require.NoError(t, c.FilterByType(models.VehicleBike))
	assert.Equal(t, []string{"v3"}, ids(c.Filtered()))

	require.NoError(t, c.FilterByType(models.VehicleTypeAll))
	assert.Equal(t, []string{"v1", "v2", "v3", "v4"}, ids(c.Filtered()))
}

func TestFilterByType_Invalid(t *testing.T) {
	c := New(testVehicles())
	require.NoError(t, c.FilterByType(models.VehicleScooter))

	err := c.FilterByType("boat")
	assert.ErrorIs(t, err, ErrInvalidVehicleType)
	assert.Equal(t, models.VehicleScooter, c.Filter())
	assert.Equal(t, []string{"v2"}, ids(c.Filtered()))
}

func TestFilterByType_EmptyCatalog(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.FilterByType(models.VehicleCar))
	assert.Empty(t, c.Filtered())
	assert.Empty(t, c.Markers())
}

func TestSelect(t *testing.T) {
	c := New(testVehicles())

	assert.True(t, c.Select("v2"))
	require.NotNil(t, c.Selected())
	assert.Equal(t, "v2", c.Selected().ID)

	assert.False(t, c.Select("missing"))
	assert.Nil(t, c.Selected())

	assert.True(t, c.Select("v3"))
	c.ClearSelection()
	assert.Nil(t, c.Selected())
}

func TestSelect_OutsideFilter(t *testing.T) {
	c := New(testVehicles())
	require.NoError(t, c.FilterByType(models.VehicleBike))

	assert.True(t, c.Select("v1"))
	assert.Equal(t, "v1", c.Selected().ID)
}

func TestMarkers(t *testing.T) {
	c := New(testVehicles())
	require.NoError(t, c.FilterByType(models.VehicleCar))
	c.Select("v4")

	markers := c.Markers()
	require.Len(t, markers, 2)
	assert.Equal(t, "v1", markers[0].VehicleID)
	assert.False(t, markers[0].Selected)
	assert.True(t, markers[0].IsAvailable)
	assert.Equal(t, "v4", markers[1].VehicleID)
	assert.True(t, markers[1].Selected)
	assert.False(t, markers[1].IsAvailable)
	assert.Equal(t, models.Coordinate{Lat: 40.7585, Lon: -73.9850}, markers[1].Position)
}

func TestNearby(t *testing.T) {
	c := New(testVehicles())
	timesSquare := models.Coordinate{Lat: 40.7580, Lon: -73.9855}

	near := c.Nearby(timesSquare, 1)
	require.Len(t, near, 2)
	assert.Equal(t, "v1", near[0].Vehicle.ID)
	assert.Equal(t, "v2", near[1].Vehicle.ID)
	assert.LessOrEqual(t, near[0].DistanceKm, near[1].DistanceKm)

	all := c.Nearby(timesSquare, 50)
	assert.Len(t, all, 3)
}

func TestFind(t *testing.T) {
	c := New(testVehicles())

	v, ok := c.Find("v3")
	require.True(t, ok)
	assert.Equal(t, "Citi Bike", v.Model)

	v.Model = "changed"
	again, _ := c.Find("v3")
	assert.Equal(t, "Citi Bike", again.Model)

	_, ok = c.Find("nope")
	assert.False(t, ok)
}
