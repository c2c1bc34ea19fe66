package playback

import (
	"math"

	"github.com/banshee-data/scanview/internal/scan"
)

// PlotPoint is a canvas coordinate. Y grows downwards.
type PlotPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Project maps a sample from sensor bearing space onto the canvas. Bearing 0
// points up (forward/north) and increases clockwise:
//
//	x = cx + d·sin(θ)·scale
//	y = cy − d·cos(θ)·scale
//
// A zero distance lands on the centre. Negative distances are not clamped.
func Project(s scan.Sample, scale float64, center PlotPoint) PlotPoint {
	theta := s.Angle * math.Pi / 180
	return PlotPoint{
		X: center.X + s.Distance*math.Sin(theta)*scale,
		Y: center.Y - s.Distance*math.Cos(theta)*scale,
	}
}

// ProjectWindow projects every sample of window with cfg's scale about the
// canvas centre, preserving order.
func ProjectWindow(window scan.Sequence, cfg ViewConfig) []PlotPoint {
	center := cfg.Center()
	points := make([]PlotPoint, len(window))
	for i, s := range window {
		points[i] = Project(s, cfg.Scale, center)
	}
	return points
}

// Ring is a reference range circle centred on the vehicle.
type Ring struct {
	Distance    float64 `json:"distance"`     // metres
	Radius      float64 `json:"radius"`       // canvas units
	StrokeWidth float64 `json:"stroke_width"` // canvas units
}

// RangeRings returns the reference circles for the current scale: the outer
// ring at maxRange and inner rings at 1/2 and 1/5 of it, plus 1/10 once the
// scale exceeds 20 and 1/20 once it exceeds 40.
func RangeRings(scale, maxRange float64) []Ring {
	divisors := []float64{1, 2, 5}
	if scale > 20 {
		divisors = append(divisors, 10)
	}
	if scale > 40 {
		divisors = append(divisors, 20)
	}

	rings := make([]Ring, 0, len(divisors))
	for _, d := range divisors {
		width := 0.5
		if d == 1 {
			width = 4
		}
		rings = append(rings, Ring{
			Distance:    maxRange / d,
			Radius:      maxRange * scale / d,
			StrokeWidth: width,
		})
	}
	return rings
}
