package livemap

import (
	"errors"
	"sort"
	"sync"
	"time"

	"geotrack-console/internal/observability/metrics"
	"geotrack-console/internal/tracker"
)

// Marker is one device rendered on the live map. Markers are ephemeral:
// the set is rebuilt on every projection pass and never persisted.
type Marker struct {
	DeviceID    uint      `json:"deviceId"`
	Name        string    `json:"name"`
	ScreenX     float64   `json:"screenX"`
	ScreenY     float64   `json:"screenY"`
	Speed       float64   `json:"speed"`
	DeviceTime  time.Time `json:"deviceTime"`
	TooltipOpen bool      `json:"tooltipOpen"`
}

// Projector maps device positions into screen coordinates and reconciles
// the result against the previously projected marker set.
//
// The mapping is a plain equirectangular scale, not a real geographic
// projection. That matches the observed behavior of the console map, which
// is illustrative rather than navigational.
type Projector struct {
	width  float64
	height float64

	mu      sync.Mutex
	markers map[uint]Marker
}

// NewProjector constructs a projector for a rendering surface of the given
// pixel dimensions.
func NewProjector(width, height float64) (*Projector, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New("livemap: non-positive surface dimensions")
	}
	return &Projector{
		width:   width,
		height:  height,
		markers: make(map[uint]Marker),
	}, nil
}

// Project produces one marker per position whose device is known, keyed by
// device id. Positions referencing an unknown device are dropped silently.
// Tooltip state survives updates for a surviving key and starts closed for a
// new key. Projecting identical input twice yields an identical marker set.
func (p *Projector) Project(devices map[uint]tracker.Device, positions []tracker.Position) []Marker {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := make(map[uint]Marker, len(positions))
	for _, pos := range positions {
		device, ok := devices[pos.DeviceID]
		if !ok {
			continue
		}
		marker := Marker{
			DeviceID:   pos.DeviceID,
			Name:       device.Name,
			ScreenX:    (pos.Longitude + 180) / 360 * p.width,
			ScreenY:    (90 - pos.Latitude) / 180 * p.height,
			Speed:      pos.Speed,
			DeviceTime: pos.DeviceTime,
		}
		if prev, ok := p.markers[pos.DeviceID]; ok {
			marker.TooltipOpen = prev.TooltipOpen
		}
		next[pos.DeviceID] = marker
	}
	p.markers = next

	metrics.SetLiveMarkers(len(next))
	return markerList(next)
}

// ToggleTooltip flips the tooltip of an existing marker and reports whether
// the marker was present.
func (p *Projector) ToggleTooltip(deviceID uint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	marker, ok := p.markers[deviceID]
	if !ok {
		return false
	}
	marker.TooltipOpen = !marker.TooltipOpen
	p.markers[deviceID] = marker
	return true
}

// Markers returns the current marker set, ordered by device id.
func (p *Projector) Markers() []Marker {
	p.mu.Lock()
	defer p.mu.Unlock()
	return markerList(p.markers)
}

func markerList(markers map[uint]Marker) []Marker {
	list := make([]Marker, 0, len(markers))
	for _, marker := range markers {
		list = append(list, marker)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].DeviceID < list[j].DeviceID })
	return list
}
