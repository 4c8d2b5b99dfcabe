// Package config loads and saves the stripview configuration file.
//
// The file lives at $XDG_CONFIG_HOME/stripview/config.toml (falling back to
// ~/.config/stripview/config.toml) and is optional: a missing file yields
// [Default]. Values present in the file override the defaults key by key,
// and command-line flags override the file.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stripview/pkg/canvas"
	"github.com/matzehuels/stripview/pkg/errors"
	"github.com/matzehuels/stripview/pkg/gesture"
)

const appName = "stripview"

// Config is the full configuration file.
type Config struct {
	Canvas canvas.Configuration `toml:"canvas"`
	Zoom   ZoomConfig           `toml:"zoom"`
	View   ViewConfig           `toml:"view"`
	Server ServerConfig         `toml:"server"`
	Cache  CacheConfig          `toml:"cache"`
}

// ZoomConfig tunes the input sources that synthesize pinches.
type ZoomConfig struct {
	// WheelStep is the scale factor per ctrl+wheel notch.
	WheelStep float64 `toml:"wheel_step"`
	// PinchSteps is the number of samples a scripted pinch is split into.
	PinchSteps int `toml:"pinch_steps"`
}

// ViewConfig configures the terminal viewer.
type ViewConfig struct {
	// CellWidth and CellHeight map terminal cells to virtual pixels.
	CellWidth  float64 `toml:"cell_width"`
	CellHeight float64 `toml:"cell_height"`
}

// ServerConfig configures the HTTP session API.
type ServerConfig struct {
	Addr            string `toml:"addr"`
	MaxSessions     int    `toml:"max_sessions"`
	ShutdownSeconds int    `toml:"shutdown_seconds"`
}

// CacheConfig configures frame caching.
type CacheConfig struct {
	Disabled bool `toml:"disabled"`
	// Dir overrides the file cache directory.
	Dir string `toml:"dir,omitempty"`
	// RedisURL selects a shared Redis cache for the server.
	RedisURL string `toml:"redis_url,omitempty"`
	// KeyPrefix scopes keys in a shared Redis instance.
	KeyPrefix string `toml:"key_prefix,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Canvas: canvas.DefaultConfiguration(),
		Zoom: ZoomConfig{
			WheelStep:  gesture.DefaultWheelZoomStep,
			PinchSteps: 8,
		},
		View: ViewConfig{CellWidth: 8, CellHeight: 16},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			MaxSessions:     1024,
			ShutdownSeconds: 10,
		},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Canvas.Validate(); err != nil {
		return err
	}
	if c.Zoom.WheelStep <= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "zoom.wheel_step must be greater than 1, got %v", c.Zoom.WheelStep)
	}
	if c.Zoom.PinchSteps <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "zoom.pinch_steps must be positive, got %d", c.Zoom.PinchSteps)
	}
	if err := errors.ValidateDimension(errors.ErrCodeInvalidConfig, "view.cell_width", c.View.CellWidth); err != nil {
		return err
	}
	if err := errors.ValidateDimension(errors.ErrCodeInvalidConfig, "view.cell_height", c.View.CellHeight); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr cannot be empty")
	}
	if c.Server.MaxSessions <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_sessions must be positive, got %d", c.Server.MaxSessions)
	}
	if c.Cache.RedisURL != "" {
		if err := errors.ValidateURL(c.Cache.RedisURL, "redis", "rediss"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.redis_url")
		}
	}
	return nil
}

// Dir returns the configuration directory using the XDG standard.
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the file at path on top of the defaults. A missing file is
// not an error. Unknown keys are rejected so typos surface early.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return buf.Bytes(), nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
