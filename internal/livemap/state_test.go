package livemap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geotrack-console/internal/tracker"
)

type captureBroadcaster struct {
	published [][]Marker
}

func (c *captureBroadcaster) Publish(markers []Marker) {
	c.published = append(c.published, markers)
}

func newTestState(t *testing.T) (*State, *captureBroadcaster) {
	t.Helper()
	projector, err := NewProjector(360, 180)
	require.NoError(t, err)
	broadcaster := &captureBroadcaster{}
	state, err := NewState(projector, broadcaster)
	require.NoError(t, err)
	return state, broadcaster
}

func TestReplaceProjectsAndPublishes(t *testing.T) {
	state, broadcaster := newTestState(t)

	devices := []tracker.Device{{ID: 1, Name: "Truck A", UniqueID: "867001"}}
	positions := []tracker.Position{{ID: 9, DeviceID: 1, Latitude: 10, Longitude: 20}}
	require.NoError(t, state.Replace(context.Background(), devices, positions))

	markers := state.Markers()
	require.Len(t, markers, 1)
	assert.InDelta(t, 200.0, markers[0].ScreenX, 1e-9)
	require.Len(t, broadcaster.published, 1)
	assert.Equal(t, markers, broadcaster.published[0])
}

func TestReplaceWholesale(t *testing.T) {
	state, _ := newTestState(t)

	require.NoError(t, state.Replace(context.Background(),
		[]tracker.Device{{ID: 1, Name: "Truck A"}, {ID: 2, Name: "Truck B"}},
		[]tracker.Position{{ID: 9, DeviceID: 1}, {ID: 10, DeviceID: 2}}))
	require.NoError(t, state.Replace(context.Background(),
		[]tracker.Device{{ID: 2, Name: "Truck B"}},
		[]tracker.Position{{ID: 11, DeviceID: 2}}))

	devices := state.Devices()
	require.Len(t, devices, 1, "snapshots replace, never merge")
	assert.Equal(t, uint(2), devices[0].ID)
	require.Len(t, state.Positions(), 1)
	require.Len(t, state.Markers(), 1)
}

func TestReplaceDiscardsStaleResult(t *testing.T) {
	state, broadcaster := newTestState(t)

	require.NoError(t, state.Replace(context.Background(),
		[]tracker.Device{{ID: 1, Name: "Truck A"}},
		[]tracker.Position{{ID: 9, DeviceID: 1, Latitude: 10, Longitude: 20}}))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	err := state.Replace(cancelled,
		[]tracker.Device{{ID: 2, Name: "Truck B"}},
		[]tracker.Position{{ID: 10, DeviceID: 2}})
	require.Error(t, err)

	devices := state.Devices()
	require.Len(t, devices, 1, "a cancelled subscription must not mutate state")
	assert.Equal(t, uint(1), devices[0].ID)
	assert.Len(t, broadcaster.published, 1)
}

func TestToggleTooltipRebroadcasts(t *testing.T) {
	state, broadcaster := newTestState(t)
	require.NoError(t, state.Replace(context.Background(),
		[]tracker.Device{{ID: 1, Name: "Truck A"}},
		[]tracker.Position{{ID: 9, DeviceID: 1}}))

	assert.False(t, state.ToggleTooltip(42))
	require.True(t, state.ToggleTooltip(1))
	require.Len(t, broadcaster.published, 2)
	assert.True(t, broadcaster.published[1][0].TooltipOpen)
}
