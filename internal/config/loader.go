package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix = "MAPTY_"
	EnvFile   = "MAPTY_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if MAPTY_CONFIG is set
//  3. env (prefix MAPTY_)
func Load(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// MAPTY_MAP_ZOOM -> map_zoom. Keys stay flat so underscores survive.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.StorageKey) == "":
		return fmt.Errorf("%w: storage_key must not be empty", ErrInvalidConfig)
	case strings.ContainsAny(c.StorageKey, `/\`):
		return fmt.Errorf("%w: storage_key must not contain path separators", ErrInvalidConfig)
	case c.MapZoom < 1 || c.MapZoom > 19:
		return fmt.Errorf("%w: map_zoom must be between 1 and 19", ErrInvalidConfig)
	case c.FocusPanSeconds < 0:
		return fmt.Errorf("%w: focus_pan_seconds must not be negative", ErrInvalidConfig)
	case c.EventQueueSize < 1:
		return fmt.Errorf("%w: event_queue_size must be positive", ErrInvalidConfig)
	case c.EventTimeoutMS < 1:
		return fmt.Errorf("%w: event_timeout_ms must be positive", ErrInvalidConfig)
	case c.MetricsRefreshSeconds <= 0:
		return fmt.Errorf("%w: metrics_refresh_seconds must be positive", ErrInvalidConfig)
	}
	return nil
}
