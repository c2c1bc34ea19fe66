package playback

import (
	"math"
	"testing"

	"github.com/banshee-data/scanview/internal/scan"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func assertPoint(t *testing.T, want, got PlotPoint) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, "x")
	assert.InDelta(t, want.Y, got.Y, eps, "y")
}

func TestProject(t *testing.T) {
	center := PlotPoint{X: 500, Y: 500}
	tests := []struct {
		name  string
		s     scan.Sample
		scale float64
		want  PlotPoint
	}{
		{"forward", scan.Sample{Angle: 0, Distance: 10}, 10, PlotPoint{500, 400}},
		{"right", scan.Sample{Angle: 90, Distance: 10}, 10, PlotPoint{600, 500}},
		{"behind", scan.Sample{Angle: 180, Distance: 10}, 10, PlotPoint{500, 600}},
		{"left", scan.Sample{Angle: 270, Distance: 10}, 10, PlotPoint{400, 500}},
		{"zero distance", scan.Sample{Angle: 123, Distance: 0}, 10, center},
		{"negative distance flips", scan.Sample{Angle: 0, Distance: -10}, 10, PlotPoint{500, 600}},
		{"diagonal", scan.Sample{Angle: 45, Distance: math.Sqrt2}, 1, PlotPoint{501, 499}},
		{"zero scale collapses", scan.Sample{Angle: 30, Distance: 10}, 0, center},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertPoint(t, tt.want, Project(tt.s, tt.scale, center))
		})
	}
}

func TestProject_AxesProperty(t *testing.T) {
	center := PlotPoint{X: 37, Y: 91}
	for _, d := range []float64{0.5, 1, 7, 50} {
		for _, scale := range []float64{1, 2.5, 10, 60} {
			assertPoint(t, PlotPoint{center.X, center.Y - d*scale}, Project(scan.Sample{Angle: 0, Distance: d}, scale, center))
			assertPoint(t, PlotPoint{center.X + d*scale, center.Y}, Project(scan.Sample{Angle: 90, Distance: d}, scale, center))
		}
	}
}

func TestProjectWindow(t *testing.T) {
	cfg := DefaultViewConfig()
	cfg.CanvasSize = 200
	cfg.Scale = 2
	window := scan.Sequence{{Angle: 0, Distance: 10}, {Angle: 90, Distance: 5}}

	got := ProjectWindow(window, cfg)
	assert.Len(t, got, 2)
	assertPoint(t, PlotPoint{100, 80}, got[0])
	assertPoint(t, PlotPoint{110, 100}, got[1])

	assert.Empty(t, ProjectWindow(nil, cfg))
}

func TestRangeRings(t *testing.T) {
	rings := RangeRings(10, 50)
	assert.Equal(t, []Ring{
		{Distance: 50, Radius: 500, StrokeWidth: 4},
		{Distance: 25, Radius: 250, StrokeWidth: 0.5},
		{Distance: 10, Radius: 100, StrokeWidth: 0.5},
	}, rings)

	assert.Len(t, RangeRings(20, 50), 3)
	assert.Len(t, RangeRings(21, 50), 4)
	assert.Len(t, RangeRings(40, 50), 4)

	zoomed := RangeRings(41, 50)
	assert.Len(t, zoomed, 5)
	assert.Equal(t, 2.5, zoomed[4].Distance)
	assert.InDelta(t, 102.5, zoomed[4].Radius, eps)
}
