package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/scanview/internal/playback"
)

// ECharts writes f as an HTML scatter page in metres, north up.
func ECharts(w io.Writer, f playback.Frame) error {
	limit := f.Config.MaxRangeRing
	if limit <= 0 {
		limit = playback.DefaultMaxRangeRing
	}

	subtitle := fmt.Sprintf("sample %d/%d  window=%d  scale=%g", f.Index, f.Total, f.Config.WindowSize, f.Config.Scale)
	if f.Unavailable {
		subtitle = "data unavailable: " + f.Error
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Scan playback", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Scan playback", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithXAxisOpts(opts.XAxis{Min: -limit, Max: limit, Name: "East (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -limit, Max: limit, Name: "North (m)", NameLocation: "middle", NameGap: 30}),
	)

	rings := make([]opts.ScatterData, 0, len(f.Rings)*73)
	for _, ring := range f.Rings {
		for _, xy := range ringPoints(ring.Distance, 5) {
			rings = append(rings, opts.ScatterData{Value: []interface{}{xy[0], xy[1]}})
		}
	}
	scatter.AddSeries("rings", rings, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 1}))

	points := make([]opts.ScatterData, 0, len(f.Points))
	for _, pt := range f.Points {
		x, y := toMetres(pt, f.Config)
		points = append(points, opts.ScatterData{Value: []interface{}{x, y}})
	}
	scatter.AddSeries("returns", points, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	scatter.AddSeries("vehicle", []opts.ScatterData{{Value: []interface{}{0, 0}, Symbol: "triangle"}},
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))

	return scatter.Render(w)
}
