package livemap

import (
	"context"
	"errors"
	"sort"
	"sync"

	"geotrack-console/internal/tracker"
)

// Broadcaster receives every newly projected marker set.
type Broadcaster interface {
	Publish(markers []Marker)
}

// State is the map view's snapshot of devices and positions. Every refresh
// wholesale-replaces the previous snapshot, so the view never renders a mix
// of two refresh generations.
type State struct {
	projector   *Projector
	broadcaster Broadcaster

	mu        sync.RWMutex
	devices   map[uint]tracker.Device
	positions []tracker.Position
}

// NewState constructs the map view state. broadcaster may be nil.
func NewState(projector *Projector, broadcaster Broadcaster) (*State, error) {
	if projector == nil {
		return nil, errors.New("livemap: nil projector")
	}
	return &State{
		projector:   projector,
		broadcaster: broadcaster,
		devices:     make(map[uint]tracker.Device),
	}, nil
}

// Replace installs a fresh snapshot and re-projects the marker set. A
// cancelled context means the owning subscription was stopped mid-fetch; the
// stale result is discarded without mutating state.
func (s *State) Replace(ctx context.Context, devices []tracker.Device, positions []tracker.Position) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	byID := make(map[uint]tracker.Device, len(devices))
	for _, device := range devices {
		byID[device.ID] = device
	}

	s.mu.Lock()
	s.devices = byID
	s.positions = positions
	s.mu.Unlock()

	markers := s.projector.Project(byID, positions)
	if s.broadcaster != nil {
		s.broadcaster.Publish(markers)
	}
	return nil
}

// Markers returns the currently projected marker set.
func (s *State) Markers() []Marker {
	return s.projector.Markers()
}

// Devices returns the device snapshot ordered by id.
func (s *State) Devices() []tracker.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]tracker.Device, 0, len(s.devices))
	for _, device := range s.devices {
		list = append(list, device)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Positions returns the position snapshot.
func (s *State) Positions() []tracker.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]tracker.Position, len(s.positions))
	copy(out, s.positions)
	return out
}

// ToggleTooltip flips a marker tooltip and rebroadcasts the marker set.
func (s *State) ToggleTooltip(deviceID uint) bool {
	if !s.projector.ToggleTooltip(deviceID) {
		return false
	}
	if s.broadcaster != nil {
		s.broadcaster.Publish(s.projector.Markers())
	}
	return true
}
