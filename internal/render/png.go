package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/scanview/internal/playback"
)

var (
	colorPoint   = color.RGBA{R: 0x1f, G: 0x9e, B: 0x89, A: 0xff}
	colorRing    = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	colorVehicle = color.RGBA{R: 0xe6, G: 0x9f, B: 0x00, A: 0xff}
)

// PNG writes f as a size x size point PNG chart in metres, north up.
func PNG(w io.Writer, f playback.Frame, size vg.Length) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Scan %d/%d", f.Index, f.Total)
	if f.Unavailable {
		p.Title.Text = "Data unavailable: " + f.Error
	}
	p.X.Label.Text = "East (m)"
	p.Y.Label.Text = "North (m)"
	p.Add(plotter.NewGrid())

	for _, ring := range f.Rings {
		pts := make(plotter.XYs, 0, 121)
		for _, xy := range ringPoints(ring.Distance, 3) {
			pts = append(pts, plotter.XY{X: xy[0], Y: xy[1]})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("ring %g: %w", ring.Distance, err)
		}
		line.Color = colorRing
		line.Width = vg.Points(ring.StrokeWidth)
		p.Add(line)
	}

	if len(f.Points) > 0 {
		pts := make(plotter.XYs, len(f.Points))
		for i, pt := range f.Points {
			pts[i].X, pts[i].Y = toMetres(pt, f.Config)
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("points: %w", err)
		}
		sc.GlyphStyle.Color = colorPoint
		sc.GlyphStyle.Radius = vg.Points(2)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add("returns", sc)
	}

	vehicle, err := plotter.NewScatter(plotter.XYs{{X: 0, Y: 0}})
	if err != nil {
		return err
	}
	vehicle.GlyphStyle.Color = colorVehicle
	vehicle.GlyphStyle.Radius = vg.Points(4)
	vehicle.GlyphStyle.Shape = draw.TriangleGlyph{}
	p.Add(vehicle)

	limit := f.Config.MaxRangeRing
	if limit <= 0 {
		limit = playback.DefaultMaxRangeRing
	}
	p.X.Min, p.X.Max = -limit, limit
	p.Y.Min, p.Y.Max = -limit, limit

	wt, err := p.WriterTo(size, size, "png")
	if err != nil {
		return fmt.Errorf("png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
