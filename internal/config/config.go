// Package config defines process configuration and its loading.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and env vars on top.
// - All loading functions accept context.Context as the first parameter.
// - Validation failures wrap ErrInvalidConfig.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. "127.0.0.1:9080".
	Addr string `koanf:"addr"`

	// DataDir is where the workout list is stored. Empty keeps it in memory.
	DataDir string `koanf:"data_dir"`

	// StorageKey names the stored list, <data_dir>/<storage_key>.json.
	StorageKey string `koanf:"storage_key"`

	// MapZoom is the zoom used when the map opens and when focusing a workout.
	MapZoom int `koanf:"map_zoom"`

	// FocusPanSeconds is the animated pan duration when focusing a workout.
	FocusPanSeconds float64 `koanf:"focus_pan_seconds"`

	// EventQueueSize bounds the controller's event queue.
	EventQueueSize int `koanf:"event_queue_size"`

	// EventTimeoutMS caps how long a request waits for its event to run.
	EventTimeoutMS int `koanf:"event_timeout_ms"`

	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshSeconds is how often gauges are sampled.
	MetricsRefreshSeconds float64 `koanf:"metrics_refresh_seconds"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            "127.0.0.1:9080",
		DataDir:         "data",
		StorageKey:      "workouts",
		MapZoom:         13,
		FocusPanSeconds: 1,
		EventQueueSize:  1024,
		EventTimeoutMS:  5000,

		MetricsEnabled:        true,
		MetricsRefreshSeconds: 10,
	}
}

// MetricsRefresh returns MetricsRefreshSeconds as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshSeconds * float64(time.Second))
}

// EventTimeout returns EventTimeoutMS as a duration.
func (c *Config) EventTimeout() time.Duration {
	return time.Duration(c.EventTimeoutMS) * time.Millisecond
}
