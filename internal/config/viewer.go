// Package config loads the viewer configuration file. Every field is
// optional; the Get* accessors fall back to the built-in defaults so a
// partial file is always safe.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/scanview/internal/playback"
	"github.com/banshee-data/scanview/internal/source"
	"github.com/banshee-data/scanview/internal/units"
)

// Defaults for the non-view settings.
const (
	DefaultSourceURL  = "http://localhost:3001/api/scan_data"
	DefaultListen     = ":8090"
	DefaultGRPCListen = ""
	DefaultUnits      = units.Metres
	DefaultTimezone   = "UTC"
)

const maxFileSize = 1 * 1024 * 1024

// ViewerConfig is the on-disk configuration for scan-viewer. Durations are
// strings such as "5s" or "20ms".
type ViewerConfig struct {
	SourceURL      *string  `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	PollInterval   *string  `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
	RequestTimeout *string  `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty"`
	Scale          *float64 `json:"scale,omitempty" yaml:"scale,omitempty"`
	WindowSize     *int     `json:"window_size,omitempty" yaml:"window_size,omitempty"`
	TickPeriod     *string  `json:"tick_period,omitempty" yaml:"tick_period,omitempty"`
	MaxRange       *float64 `json:"max_range,omitempty" yaml:"max_range,omitempty"`
	CanvasSize     *float64 `json:"canvas_size,omitempty" yaml:"canvas_size,omitempty"`
	Units          *string  `json:"units,omitempty" yaml:"units,omitempty"`
	Timezone       *string  `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Listen         *string  `json:"listen,omitempty" yaml:"listen,omitempty"`
	GRPCListen     *string  `json:"grpc_listen,omitempty" yaml:"grpc_listen,omitempty"`
}

func ptrString(v string) *string { return &v }

// EmptyViewerConfig returns a config with every field unset.
func EmptyViewerConfig() *ViewerConfig {
	return &ViewerConfig{}
}

// LoadViewerConfig reads a .json, .yaml or .yml file. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func LoadViewerConfig(path string) (*ViewerConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyViewerConfig()
	if ext == ".json" {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that must parse. View parameters are not range
// checked: degenerate values are allowed and only affect the drawing.
func (c *ViewerConfig) Validate() error {
	durations := []struct {
		name string
		v    *string
	}{
		{"poll_interval", c.PollInterval},
		{"request_timeout", c.RequestTimeout},
		{"tick_period", c.TickPeriod},
	}
	for _, d := range durations {
		if d.v == nil {
			continue
		}
		parsed, err := time.ParseDuration(*d.v)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", d.name, *d.v, err)
		}
		if d.name != "tick_period" && parsed <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, *d.v)
		}
	}

	if c.Units != nil && !units.IsValid(*c.Units) {
		return fmt.Errorf("units must be one of %s, got %q", units.GetValidUnitsString(), *c.Units)
	}
	if c.Timezone != nil && !units.IsTimezoneValid(*c.Timezone) {
		return fmt.Errorf("invalid timezone %q", *c.Timezone)
	}
	if c.SourceURL != nil && *c.SourceURL == "" {
		return fmt.Errorf("source_url must not be empty")
	}
	return nil
}

func durationOr(v *string, def time.Duration) time.Duration {
	if v == nil {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def
	}
	return d
}

func (c *ViewerConfig) GetSourceURL() string {
	if c.SourceURL == nil {
		return DefaultSourceURL
	}
	return *c.SourceURL
}

func (c *ViewerConfig) GetPollInterval() time.Duration {
	return durationOr(c.PollInterval, playback.DefaultPollInterval)
}

func (c *ViewerConfig) GetRequestTimeout() time.Duration {
	return durationOr(c.RequestTimeout, source.DefaultRequestTimeout)
}

func (c *ViewerConfig) GetScale() float64 {
	if c.Scale == nil {
		return playback.DefaultScale
	}
	return *c.Scale
}

func (c *ViewerConfig) GetWindowSize() int {
	if c.WindowSize == nil {
		return playback.DefaultWindowSize
	}
	return *c.WindowSize
}

func (c *ViewerConfig) GetTickPeriod() time.Duration {
	return durationOr(c.TickPeriod, playback.DefaultTickPeriod)
}

func (c *ViewerConfig) GetMaxRange() float64 {
	if c.MaxRange == nil {
		return playback.DefaultMaxRangeRing
	}
	return *c.MaxRange
}

func (c *ViewerConfig) GetCanvasSize() float64 {
	if c.CanvasSize == nil {
		return playback.DefaultCanvasSize
	}
	return *c.CanvasSize
}

func (c *ViewerConfig) GetUnits() string {
	if c.Units == nil {
		return DefaultUnits
	}
	return *c.Units
}

func (c *ViewerConfig) GetTimezone() string {
	if c.Timezone == nil {
		return DefaultTimezone
	}
	return *c.Timezone
}

func (c *ViewerConfig) GetListen() string {
	if c.Listen == nil {
		return DefaultListen
	}
	return *c.Listen
}

// GetGRPCListen returns the gRPC address; empty disables the gRPC server.
func (c *ViewerConfig) GetGRPCListen() string {
	if c.GRPCListen == nil {
		return DefaultGRPCListen
	}
	return *c.GRPCListen
}

// ViewConfig builds the engine's initial view parameters.
func (c *ViewerConfig) ViewConfig() playback.ViewConfig {
	return playback.ViewConfig{
		Scale:        c.GetScale(),
		WindowSize:   c.GetWindowSize(),
		TickPeriod:   c.GetTickPeriod(),
		MaxRangeRing: c.GetMaxRange(),
		CanvasSize:   c.GetCanvasSize(),
	}
}

// SetString stores a flag value by config key. It lets cmd apply flags
// that were set explicitly on top of the file.
func (c *ViewerConfig) SetString(key, value string) error {
	switch key {
	case "source_url":
		c.SourceURL = ptrString(value)
	case "poll_interval":
		c.PollInterval = ptrString(value)
	case "request_timeout":
		c.RequestTimeout = ptrString(value)
	case "tick_period":
		c.TickPeriod = ptrString(value)
	case "units":
		c.Units = ptrString(value)
	case "timezone":
		c.Timezone = ptrString(value)
	case "listen":
		c.Listen = ptrString(value)
	case "grpc_listen":
		c.GRPCListen = ptrString(value)
	default:
		return fmt.Errorf("unknown string config key %q", key)
	}
	return nil
}
