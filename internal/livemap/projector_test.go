package livemap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geotrack-console/internal/tracker"
)

func testDevices() map[uint]tracker.Device {
	return map[uint]tracker.Device{
		1: {ID: 1, Name: "Truck A", UniqueID: "867001", Status: tracker.StatusOnline},
		2: {ID: 2, Name: "Truck B", UniqueID: "867002", Status: tracker.StatusOffline},
	}
}

func position(id, deviceID uint, lat, lon float64) tracker.Position {
	return tracker.Position{
		ID:         id,
		DeviceID:   deviceID,
		Latitude:   lat,
		Longitude:  lon,
		Speed:      42.5,
		DeviceTime: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestProjectScreenCoordinates(t *testing.T) {
	p, err := NewProjector(360, 180)
	require.NoError(t, err)

	markers := p.Project(testDevices(), []tracker.Position{position(9, 1, 10, 20)})
	require.Len(t, markers, 1)
	assert.Equal(t, uint(1), markers[0].DeviceID)
	assert.InDelta(t, 200.0, markers[0].ScreenX, 1e-9) // (20+180)/360*360
	assert.InDelta(t, 80.0, markers[0].ScreenY, 1e-9)  // (90-10)/180*180
	assert.Equal(t, "Truck A", markers[0].Name)
	assert.False(t, markers[0].TooltipOpen)
}

func TestProjectDropsDanglingPositions(t *testing.T) {
	p, err := NewProjector(360, 180)
	require.NoError(t, err)

	markers := p.Project(testDevices(), []tracker.Position{
		position(9, 1, 10, 20),
		position(10, 99, 0, 0), // no such device
	})
	require.Len(t, markers, 1)
	for _, m := range markers {
		assert.NotEqual(t, uint(99), m.DeviceID)
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	p, err := NewProjector(1024, 512)
	require.NoError(t, err)

	devices := testDevices()
	positions := []tracker.Position{position(9, 1, 10, 20), position(11, 2, -33.9, 151.2)}

	first := p.Project(devices, positions)
	require.True(t, p.ToggleTooltip(1))
	second := p.Project(devices, positions)
	third := p.Project(devices, positions)

	require.Len(t, first, 2)
	assert.Equal(t, second, third, "identical input must reproduce the marker set")
	assert.True(t, second[0].TooltipOpen)
}

func TestTooltipStatePersistsAcrossUpdates(t *testing.T) {
	p, err := NewProjector(360, 180)
	require.NoError(t, err)

	p.Project(testDevices(), []tracker.Position{position(9, 1, 10, 20)})
	require.True(t, p.ToggleTooltip(1))

	// Device 1 moved; device 2 appears for the first time.
	markers := p.Project(testDevices(), []tracker.Position{
		position(12, 1, 11, 21),
		position(13, 2, -10, -20),
	})
	require.Len(t, markers, 2)
	assert.True(t, markers[0].TooltipOpen, "tooltip must survive a position update")
	assert.False(t, markers[1].TooltipOpen, "a new marker starts with its tooltip closed")
}

func TestRemovedDeviceDropsMarkerAndTooltip(t *testing.T) {
	p, err := NewProjector(360, 180)
	require.NoError(t, err)

	p.Project(testDevices(), []tracker.Position{position(9, 1, 10, 20)})
	require.True(t, p.ToggleTooltip(1))

	markers := p.Project(testDevices(), nil)
	assert.Empty(t, markers, "empty position list projects an empty marker set")

	// The key re-appearing later counts as newly created.
	markers = p.Project(testDevices(), []tracker.Position{position(14, 1, 10, 20)})
	require.Len(t, markers, 1)
	assert.False(t, markers[0].TooltipOpen)
}

func TestToggleTooltipUnknownDevice(t *testing.T) {
	p, err := NewProjector(360, 180)
	require.NoError(t, err)
	assert.False(t, p.ToggleTooltip(7))
}

func TestNewProjectorRejectsBadSurface(t *testing.T) {
	_, err := NewProjector(0, 180)
	assert.Error(t, err)
	_, err = NewProjector(360, -1)
	assert.Error(t, err)
}
