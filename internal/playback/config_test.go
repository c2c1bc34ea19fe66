package playback

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultViewConfig(t *testing.T) {
	cfg := DefaultViewConfig()
	assert.Equal(t, 10.0, cfg.Scale)
	assert.Equal(t, 150, cfg.WindowSize)
	assert.Equal(t, 20*time.Millisecond, cfg.TickPeriod)
	assert.Equal(t, 50.0, cfg.MaxRangeRing)
	assert.Equal(t, PlotPoint{500, 500}, cfg.Center())
}

func TestViewConfig_ArmPeriod(t *testing.T) {
	cfg := DefaultViewConfig()
	assert.Equal(t, 20*time.Millisecond, cfg.armPeriod())

	cfg.TickPeriod = 0
	assert.Equal(t, time.Millisecond, cfg.armPeriod())

	cfg.TickPeriod = -5 * time.Second
	assert.Equal(t, time.Millisecond, cfg.armPeriod())
}

func TestViewConfig_JSON(t *testing.T) {
	cfg := DefaultViewConfig()
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"scale":10,"window_size":150,"tick_period_ms":20,"max_range_ring":50,"canvas_size":1000}`, string(data))

	var back ViewConfig
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, cfg, back)
}

func TestSettings_Update(t *testing.T) {
	s := NewSettings(DefaultViewConfig())

	scale := 25.0
	got := s.Update(ViewEdit{Scale: &scale})
	assert.Equal(t, 25.0, got.Scale)
	assert.Equal(t, 150, got.WindowSize)
	assert.Equal(t, got, s.Get())

	select {
	case <-s.Changed():
	default:
		t.Fatal("expected change notification")
	}

	// Out-of-range values are accepted as-is.
	w := 0
	period := -time.Millisecond
	got = s.Update(ViewEdit{WindowSize: &w, TickPeriod: &period})
	assert.Equal(t, 0, got.WindowSize)
	assert.Equal(t, -time.Millisecond, got.TickPeriod)
}

func TestSettings_EmptyEditDoesNotNotify(t *testing.T) {
	s := NewSettings(DefaultViewConfig())
	s.Update(ViewEdit{})
	select {
	case <-s.Changed():
		t.Fatal("empty edit should not notify")
	default:
	}
}

func TestSettings_NotificationsCoalesce(t *testing.T) {
	s := NewSettings(DefaultViewConfig())
	for i := 1; i <= 5; i++ {
		w := i
		s.Update(ViewEdit{WindowSize: &w})
	}
	<-s.Changed()
	select {
	case <-s.Changed():
		t.Fatal("expected a single coalesced notification")
	default:
	}
	assert.Equal(t, 5, s.Get().WindowSize)
}
