// Package logconv turns the obstacle-avoidance console log into a scan
// sequence.
//
// The log is read as whitespace separated tokens:
//
//	12.5 m          distance reading
//	Distance: 12.5, distance reading; also moves to the next pose slot
//	90 deg          bearing reading
//	Angle: 90,      bearing reading
//	North: 1.5,     pose fields for the current pose slot; Down carries
//	East: -2.0,     two trailing characters, the others one
//	Down: 0.3,,
//	FlightMode.MOVING.   mode AUTO
//	FlightMode.STOPPED.  mode LOITER
//	Time: 1700000000.5,  capture time, epoch seconds
//
// Distances and bearings are paired in order of appearance. Pose slot n
// belongs to the n-th reading, so pose values printed after the k-th
// "Distance:" line land on reading k.
package logconv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/scanview/internal/scan"
)

// Flight mode labels written for the two logged states.
const (
	ModeAuto   = "AUTO"
	ModeLoiter = "LOITER"
)

// ErrUnpaired is returned when the log has fewer bearings than distances.
var ErrUnpaired = errors.New("fewer angles than distances")

type pose struct {
	north, east, down, time float64
	mode                    string
}

type parser struct {
	dists  []float64
	angles []float64
	poses  map[int]*pose
	index  int
	line   int
}

// Parse reads a log and returns one sample per distance reading.
func Parse(r io.Reader) (scan.Sequence, error) {
	p := &parser{poses: make(map[int]*pose)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		p.line++
		if err := p.parseLine(strings.Fields(sc.Text())); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	if len(p.angles) < len(p.dists) {
		return nil, fmt.Errorf("%w: %d distances, %d angles", ErrUnpaired, len(p.dists), len(p.angles))
	}

	seq := make(scan.Sequence, len(p.dists))
	for i, d := range p.dists {
		seq[i] = scan.Sample{Distance: d, Angle: p.angles[i]}
		if ps, ok := p.poses[i]; ok {
			seq[i].North = ps.north
			seq[i].East = ps.east
			seq[i].Down = ps.down
			seq[i].Mode = ps.mode
			seq[i].Time = ps.time
		}
	}
	return seq, nil
}

func (p *parser) current() *pose {
	ps, ok := p.poses[p.index]
	if !ok {
		ps = &pose{}
		p.poses[p.index] = ps
	}
	return ps
}

func (p *parser) parseLine(tokens []string) error {
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok {
		case "m", "deg":
			if i == 0 {
				continue
			}
			v, err := p.number(tokens[i-1], 0)
			if err != nil {
				return err
			}
			if tok == "m" {
				p.dists = append(p.dists, v)
			} else {
				p.angles = append(p.angles, v)
			}

		case "FlightMode.MOVING.":
			p.current().mode = ModeAuto
		case "FlightMode.STOPPED.":
			p.current().mode = ModeLoiter

		case "Distance:", "Angle:", "North:", "East:", "Down:", "Time:":
			if i+1 >= len(tokens) {
				return fmt.Errorf("line %d: %s has no value", p.line, tok)
			}
			i++
			strip := 1
			if tok == "Down:" {
				strip = 2
			}
			v, err := p.number(tokens[i], strip)
			if err != nil {
				return err
			}
			switch tok {
			case "Distance:":
				p.dists = append(p.dists, v)
				p.index++
			case "Angle:":
				p.angles = append(p.angles, v)
			case "North:":
				p.current().north = v
			case "East:":
				p.current().east = v
			case "Down:":
				p.current().down = v
			case "Time:":
				p.current().time = v
			}
		}
	}
	return nil
}

// number parses s after dropping strip trailing characters.
func (p *parser) number(s string, strip int) (float64, error) {
	if len(s) < strip {
		return 0, fmt.Errorf("line %d: malformed value %q", p.line, s)
	}
	v, err := strconv.ParseFloat(s[:len(s)-strip], 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: malformed value %q: %w", p.line, s, err)
	}
	return v, nil
}

// Convert parses a log from r and writes the sequence to w as JSON.
func Convert(r io.Reader, w io.Writer) (scan.Sequence, error) {
	seq, err := Parse(r)
	if err != nil {
		return nil, err
	}
	if err := scan.Encode(w, seq); err != nil {
		return nil, err
	}
	return seq, nil
}
