// Package scan defines the ranging-sensor sample model shared by the data
// origin, the playback engine and the log converter.
package scan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformed is returned when a payload does not have the shape of a
// sample array.
var ErrMalformed = errors.New("malformed scan payload")

// Sample is one ranging reading tagged with the vehicle pose at capture time.
//
// North, East, Down and Time use 0 to mean "unchanged/unknown" and Mode uses
// the empty string for the same purpose. A genuine zero cannot be told apart
// from "unchanged".
type Sample struct {
	Angle    float64 `json:"angle"`    // degrees, 0 is forward, clockwise
	Distance float64 `json:"distance"` // metres from the sensor origin
	North    float64 `json:"north"`
	East     float64 `json:"east"`
	Down     float64 `json:"down"`
	Mode     string  `json:"mode"`
	Time     float64 `json:"time"`
}

func (s Sample) String() string {
	return fmt.Sprintf("angle=%.2f distance=%.2f north=%.2f east=%.2f down=%.2f mode=%q time=%.3f",
		s.Angle, s.Distance, s.North, s.East, s.Down, s.Mode, s.Time)
}

// Sequence is a time-ordered run of samples. Playback treats it as circular.
type Sequence []Sample

// Len returns the number of samples.
func (s Sequence) Len() int { return len(s) }

// Clone returns a copy that does not share backing storage with s.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Decode parses a JSON array of samples. Any payload that is not an array of
// sample objects, or whose fields have the wrong JSON type, yields an error
// wrapping ErrMalformed.
func Decode(r io.Reader) (Sequence, error) {
	dec := json.NewDecoder(r)

	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected array, got null", ErrMalformed)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after array", ErrMalformed)
	}

	seq := make(Sequence, 0, len(raw))
	for i, msg := range raw {
		if len(msg) == 0 || msg[0] != '{' {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrMalformed, i)
		}
		var s Sample
		if err := json.Unmarshal(msg, &s); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrMalformed, i, err)
		}
		seq = append(seq, s)
	}
	return seq, nil
}

// Encode writes seq as an indented JSON array. A nil sequence is written as
// an empty array so the output always decodes.
func Encode(w io.Writer, seq Sequence) error {
	if seq == nil {
		seq = Sequence{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(seq); err != nil {
		return fmt.Errorf("failed to encode samples: %w", err)
	}
	return nil
}
