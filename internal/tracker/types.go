package tracker

import "time"

// Device statuses reported by the tracking server.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusUnknown = "unknown"
)

// Device represents a tracked unit registered on the tracking server.
type Device struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	UniqueID   string     `json:"uniqueId"`
	Status     string     `json:"status"`
	LastUpdate *time.Time `json:"lastUpdate,omitempty"`
}

// Position is a single GPS fix for a device.
type Position struct {
	ID         uint           `json:"id"`
	DeviceID   uint           `json:"deviceId"`
	Protocol   string         `json:"protocol,omitempty"`
	ServerTime time.Time      `json:"serverTime"`
	DeviceTime time.Time      `json:"deviceTime"`
	FixTime    time.Time      `json:"fixTime"`
	Valid      bool           `json:"valid"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
	Altitude   float64        `json:"altitude"`
	Speed      float64        `json:"speed"`
	Course     float64        `json:"course"`
	Address    string         `json:"address,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// User is an operator account on the tracking server.
type User struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Administrator bool   `json:"administrator"`
	Disabled      bool   `json:"disabled"`
}

// ServerStats is the aggregate health report of the tracking server.
type ServerStats struct {
	CPULoad       float64 `json:"cpuLoad"`
	UsedMemory    float64 `json:"usedMemory"`
	TotalMemory   float64 `json:"totalMemory"`
	ActiveUsers   int     `json:"activeUsers"`
	ActiveDevices int     `json:"activeDevices"`
}
