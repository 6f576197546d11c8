package console

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// MapConfig defines the projection surface in pixels.
type MapConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PollConfig defines refresh intervals, in seconds, per subscribed view.
type PollConfig struct {
	DevicesSeconds int `yaml:"devices"`
	MapSeconds     int `yaml:"map"`
	StatsSeconds   int `yaml:"stats"`
}

// Config defines console configuration.
type Config struct {
	TrackerBaseURL string     `yaml:"tracker_base_url"`
	HTTPAddr       string     `yaml:"http_addr"`
	StateDir       string     `yaml:"state_dir"`
	Map            MapConfig  `yaml:"map"`
	Poll           PollConfig `yaml:"poll"`
}

// DevicesInterval returns the device-list refresh interval.
func (c Config) DevicesInterval() time.Duration {
	return time.Duration(c.Poll.DevicesSeconds) * time.Second
}

// MapInterval returns the live-map refresh interval.
func (c Config) MapInterval() time.Duration {
	return time.Duration(c.Poll.MapSeconds) * time.Second
}

// StatsInterval returns the server-stats refresh interval.
func (c Config) StatsInterval() time.Duration {
	return time.Duration(c.Poll.StatsSeconds) * time.Second
}

// LoadConfig loads config from env, with an optional yaml file pointed at by
// CONSOLE_CONFIG taking precedence over the defaults.
func LoadConfig() (Config, error) {
	cfg := Config{
		TrackerBaseURL: os.Getenv("TRACKER_BASE_URL"),
		HTTPAddr:       getenvDefault("CONSOLE_HTTP_ADDR", ":8080"),
		StateDir:       getenvDefault("CONSOLE_STATE_DIR", filepath.FromSlash("var/console")),
		Map: MapConfig{
			Width:  getenvFloatDefault("CONSOLE_MAP_WIDTH", 1024),
			Height: getenvFloatDefault("CONSOLE_MAP_HEIGHT", 512),
		},
		Poll: PollConfig{
			DevicesSeconds: getenvIntDefault("CONSOLE_POLL_DEVICES_SECONDS", 60),
			MapSeconds:     getenvIntDefault("CONSOLE_POLL_MAP_SECONDS", 30),
			StatsSeconds:   getenvIntDefault("CONSOLE_POLL_STATS_SECONDS", 30),
		},
	}

	if path := os.Getenv("CONSOLE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.TrackerBaseURL == "" {
		return cfg, errors.New("console: tracker base url required")
	}
	if cfg.Map.Width <= 0 || cfg.Map.Height <= 0 {
		return cfg, errors.New("console: non-positive map surface")
	}
	if cfg.Poll.DevicesSeconds <= 0 || cfg.Poll.MapSeconds <= 0 || cfg.Poll.StatsSeconds <= 0 {
		return cfg, errors.New("console: non-positive poll interval")
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
