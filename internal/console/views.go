package console

import (
	"context"
	"math/rand"
	"sync"

	"geotrack-console/internal/tracker"
)

// DevicesView is the device-list page's snapshot, refreshed by its own
// polling subscription independently of the live map.
type DevicesView struct {
	client *tracker.Client

	mu      sync.RWMutex
	devices []tracker.Device
}

// NewDevicesView constructs the device-list view.
func NewDevicesView(client *tracker.Client) *DevicesView {
	return &DevicesView{client: client}
}

// Refresh replaces the snapshot with a fresh device list. A cancelled
// context discards the fetched result without mutating the snapshot.
func (v *DevicesView) Refresh(ctx context.Context) error {
	devices, err := v.client.Devices(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	v.devices = devices
	v.mu.Unlock()
	return nil
}

// Current returns the last fetched device list.
func (v *DevicesView) Current() []tracker.Device {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]tracker.Device, len(v.devices))
	copy(out, v.devices)
	return out
}

// StatsView is the dashboard's server-health snapshot. When the tracking
// server has no stats endpoint the view degrades to synthetic numbers in the
// observed ranges instead of failing; a refresh therefore never errors for
// API-level failures. A 401 still clears the session inside the gateway
// before the fallback kicks in.
type StatsView struct {
	client *tracker.Client

	mu        sync.RWMutex
	stats     tracker.ServerStats
	synthetic bool
	populated bool
}

// NewStatsView constructs the dashboard stats view.
func NewStatsView(client *tracker.Client) *StatsView {
	return &StatsView{client: client}
}

// Refresh fetches server stats, substituting synthetic data on any fetch
// failure. A cancelled context discards the result.
func (v *StatsView) Refresh(ctx context.Context) error {
	stats, err := v.client.Stats(ctx)
	synthetic := false
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		stats = syntheticStats()
		synthetic = true
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	v.stats = *stats
	v.synthetic = synthetic
	v.populated = true
	v.mu.Unlock()
	return nil
}

// Current returns the last stats snapshot and whether it is synthetic. ok is
// false until the first refresh completes.
func (v *StatsView) Current() (stats tracker.ServerStats, synthetic, ok bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.stats, v.synthetic, v.populated
}

func syntheticStats() *tracker.ServerStats {
	return &tracker.ServerStats{
		CPULoad:       rand.Float64() * 100,
		UsedMemory:    rand.Float64() * 1024,
		TotalMemory:   4096,
		ActiveUsers:   rand.Intn(10),
		ActiveDevices: rand.Intn(50),
	}
}
