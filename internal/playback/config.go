// Package playback implements the scan replay engine: a wrapping cursor over
// the fetched sample sequence, the sticky odometry readout, the polar to
// canvas projection and the cooperative scheduler that drives them.
package playback

import (
	"encoding/json"
	"sync"
	"time"
)

// Defaults taken from the operator viewer.
const (
	DefaultScale        = 10.0
	DefaultWindowSize   = 150
	DefaultTickPeriod   = 20 * time.Millisecond
	DefaultMaxRangeRing = 50.0
	DefaultCanvasSize   = 1000.0
	DefaultPollInterval = 5 * time.Second
)

// ViewConfig holds the user-editable view parameters. Values outside the
// documented minimums (Scale >= 1, WindowSize >= 1, TickPeriod >= 1ms) are
// not rejected; they produce degenerate geometry instead.
type ViewConfig struct {
	Scale        float64       // canvas units per metre
	WindowSize   int           // samples visible at once
	TickPeriod   time.Duration // time between cursor advances
	MaxRangeRing float64       // radius of the outer reference ring, metres
	CanvasSize   float64       // square canvas edge, canvas units
}

// DefaultViewConfig returns the viewer defaults.
func DefaultViewConfig() ViewConfig {
	return ViewConfig{
		Scale:        DefaultScale,
		WindowSize:   DefaultWindowSize,
		TickPeriod:   DefaultTickPeriod,
		MaxRangeRing: DefaultMaxRangeRing,
		CanvasSize:   DefaultCanvasSize,
	}
}

// Center returns the canvas centre, where the vehicle is drawn.
func (c ViewConfig) Center() PlotPoint {
	return PlotPoint{X: c.CanvasSize / 2, Y: c.CanvasSize / 2}
}

// armPeriod is the period used to arm the playback timer. Go timers need a
// positive duration, so anything below 1ms is raised to 1ms here only.
func (c ViewConfig) armPeriod() time.Duration {
	if c.TickPeriod < time.Millisecond {
		return time.Millisecond
	}
	return c.TickPeriod
}

type viewConfigJSON struct {
	Scale        float64 `json:"scale"`
	WindowSize   int     `json:"window_size"`
	TickPeriodMs float64 `json:"tick_period_ms"`
	MaxRangeRing float64 `json:"max_range_ring"`
	CanvasSize   float64 `json:"canvas_size"`
}

// MarshalJSON encodes the tick period in milliseconds.
func (c ViewConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(viewConfigJSON{
		Scale:        c.Scale,
		WindowSize:   c.WindowSize,
		TickPeriodMs: float64(c.TickPeriod) / float64(time.Millisecond),
		MaxRangeRing: c.MaxRangeRing,
		CanvasSize:   c.CanvasSize,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (c *ViewConfig) UnmarshalJSON(data []byte) error {
	var v viewConfigJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = ViewConfig{
		Scale:        v.Scale,
		WindowSize:   v.WindowSize,
		TickPeriod:   time.Duration(v.TickPeriodMs * float64(time.Millisecond)),
		MaxRangeRing: v.MaxRangeRing,
		CanvasSize:   v.CanvasSize,
	}
	return nil
}

// ViewEdit is a partial update from the control surface. Nil fields are left
// unchanged.
type ViewEdit struct {
	Scale      *float64       `json:"scale,omitempty"`
	WindowSize *int           `json:"window_size,omitempty"`
	TickPeriod *time.Duration `json:"-"`
}

// Empty reports whether the edit changes nothing.
func (e ViewEdit) Empty() bool {
	return e.Scale == nil && e.WindowSize == nil && e.TickPeriod == nil
}

// Settings is the live, shared ViewConfig. Edits become visible to the
// engine on its next tick; a change notification lets the engine re-arm its
// timer when the tick period changes.
type Settings struct {
	mu      sync.RWMutex
	cfg     ViewConfig
	changed chan struct{}
}

// NewSettings creates a Settings holder seeded with cfg.
func NewSettings(cfg ViewConfig) *Settings {
	return &Settings{
		cfg:     cfg,
		changed: make(chan struct{}, 1),
	}
}

// Get returns a copy of the current configuration.
func (s *Settings) Get() ViewConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update applies edit and returns the resulting configuration.
func (s *Settings) Update(edit ViewEdit) ViewConfig {
	s.mu.Lock()
	if edit.Scale != nil {
		s.cfg.Scale = *edit.Scale
	}
	if edit.WindowSize != nil {
		s.cfg.WindowSize = *edit.WindowSize
	}
	if edit.TickPeriod != nil {
		s.cfg.TickPeriod = *edit.TickPeriod
	}
	cfg := s.cfg
	s.mu.Unlock()

	if !edit.Empty() {
		select {
		case s.changed <- struct{}{}:
		default:
		}
	}
	return cfg
}

// Changed delivers a notification after any non-empty Update. Notifications
// coalesce: several edits between reads produce one signal.
func (s *Settings) Changed() <-chan struct{} {
	return s.changed
}
