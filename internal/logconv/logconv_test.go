package logconv

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/scanview/internal/scan"
)

const sampleLog = `INFO obstacle at 12.5 m bearing 30 deg
Distance: 8.25, Angle: 45.0,
North: 1.5, East: -2.25, Down: 0.75,,
FlightMode.MOVING.
Time: 1700000000.5,
Distance: 4.0, Angle: 180.0,
FlightMode.STOPPED.
`

func TestParse(t *testing.T) {
	seq, err := Parse(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := scan.Sequence{
		{Distance: 12.5, Angle: 30},
		{Distance: 8.25, Angle: 45, North: 1.5, East: -2.25, Down: 0.75, Mode: ModeAuto, Time: 1700000000.5},
		{Distance: 4.0, Angle: 180, Mode: ModeLoiter},
	}
	if diff := cmp.Diff(want, seq); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_PoseBeforeAnyDistanceLine(t *testing.T) {
	log := "North: 3.0,\n2 m 10 deg\n"
	seq, err := Parse(strings.NewReader(log))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(seq) != 1 || seq[0].North != 3 {
		t.Errorf("pose slot 0 should attach to the first reading, got %+v", seq)
	}
}

func TestParse_ExtraAnglesIgnored(t *testing.T) {
	seq, err := Parse(strings.NewReader("1 m 10 deg 20 deg\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(seq) != 1 || seq[0].Angle != 10 {
		t.Errorf("got %+v", seq)
	}
}

func TestParse_Empty(t *testing.T) {
	seq, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(seq) != 0 {
		t.Errorf("expected no samples, got %d", len(seq))
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		log  string
		want string
	}{
		{"unpaired", "1 m\n2 m 5 deg\n", "fewer angles than distances"},
		{"bad number", "Distance: abc, Angle: 1,\n", "line 1: malformed value"},
		{"bad unit value", "\nfar m\n", "line 2: malformed value"},
		{"missing value", "North:\n", "North: has no value"},
		{"short down", "Down: 1\n", "malformed value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.log))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}

	_, err := Parse(strings.NewReader("1 m\n"))
	if !errors.Is(err, ErrUnpaired) {
		t.Errorf("expected ErrUnpaired, got %v", err)
	}
}

func TestParse_LeadingUnitToken(t *testing.T) {
	seq, err := Parse(strings.NewReader("m\ndeg\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(seq) != 0 {
		t.Errorf("bare unit tokens should be ignored, got %+v", seq)
	}
}

func TestConvert(t *testing.T) {
	var buf bytes.Buffer
	seq, err := Convert(strings.NewReader(sampleLog), &buf)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	back, err := scan.Decode(&buf)
	if err != nil {
		t.Fatalf("output does not decode: %v", err)
	}
	if diff := cmp.Diff(seq, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
