package playback

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/banshee-data/scanview/internal/scan"
	"github.com/banshee-data/scanview/internal/units"
)

// Field is a sticky odometry value. Set is false until a non-sentinel value
// has been observed.
type Field[T float64 | string] struct {
	Value T
	Set   bool
}

// MarshalJSON encodes an unset field as null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON decodes null as unset.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Field[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Field[T]{Value: v, Set: true}
	return nil
}

func set[T float64 | string](v T) Field[T] { return Field[T]{Value: v, Set: true} }

// Odometry is the last known vehicle state derived from the played samples.
type Odometry struct {
	North Field[float64] `json:"north"`
	East  Field[float64] `json:"east"`
	Down  Field[float64] `json:"down"`
	Mode  Field[string]  `json:"mode"`
	Time  Field[float64] `json:"time"`
}

// Apply folds one sample into snap. Each field is judged on its own: a
// numeric field takes the sample's value only when it is non-zero, and Mode
// only when it is non-empty. Otherwise the previous value is kept, so a field
// never returns to unset and a sentinel zero is never shown as a reading.
func Apply(snap Odometry, s scan.Sample) Odometry {
	if s.North != 0 {
		snap.North = set(s.North)
	}
	if s.East != 0 {
		snap.East = set(s.East)
	}
	if s.Down != 0 {
		snap.Down = set(s.Down)
	}
	if s.Mode != "" {
		snap.Mode = set(s.Mode)
	}
	if s.Time != 0 {
		snap.Time = set(s.Time)
	}
	return snap
}

// Fold applies samples to snap in order.
func Fold(snap Odometry, samples ...scan.Sample) Odometry {
	for _, s := range samples {
		snap = Apply(snap, s)
	}
	return snap
}

// Lines renders the readout rows shown beside the plot. Pose values are in
// the requested distance units rounded to two decimals; the capture time is
// formatted in tz. Unset fields are omitted.
func (o Odometry) Lines(distanceUnits, tz string) []string {
	var lines []string
	pose := []struct {
		label string
		f     Field[float64]
	}{
		{"North", o.North},
		{"East", o.East},
		{"Down", o.Down},
	}
	for _, p := range pose {
		if !p.f.Set {
			continue
		}
		v := units.Round2(units.ConvertDistance(p.f.Value, distanceUnits))
		lines = append(lines, fmt.Sprintf("%s: %s", p.label, strconv.FormatFloat(v, 'f', -1, 64)))
	}
	if o.Mode.Set {
		lines = append(lines, "Mode: "+o.Mode.Value)
	}
	if o.Time.Set {
		ts, _ := units.FormatEpoch(o.Time.Value, tz)
		lines = append(lines, "Time: "+ts)
	}
	return lines
}
