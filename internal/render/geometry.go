// Package render paints playback frames: on a terminal, as a PNG chart and
// as an interactive HTML chart.
package render

import (
	"math"

	"github.com/banshee-data/scanview/internal/playback"
)

// toMetres converts a canvas point back to vehicle-relative metres with
// north up.
func toMetres(p playback.PlotPoint, cfg playback.ViewConfig) (x, y float64) {
	c := cfg.Center()
	scale := cfg.Scale
	if scale == 0 {
		return 0, 0
	}
	return (p.X - c.X) / scale, (c.Y - p.Y) / scale
}

// ringPoints samples a circle of radius r metres every step degrees.
func ringPoints(r float64, step int) [][2]float64 {
	pts := make([][2]float64, 0, 360/step+1)
	for deg := 0; deg <= 360; deg += step {
		theta := float64(deg) * math.Pi / 180
		pts = append(pts, [2]float64{r * math.Sin(theta), r * math.Cos(theta)})
	}
	return pts
}
