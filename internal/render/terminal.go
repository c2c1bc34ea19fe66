package render

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/banshee-data/scanview/internal/playback"
)

var (
	styleDefault = tcell.StyleDefault
	stylePoint   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleRing    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleOuter   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleVehicle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleBanner  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorRed).Bold(true)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorBlue)
)

// odometryWidth is the column reserved on the right for the readout.
const odometryWidth = 30

// Terminal draws frames on a tcell screen: the plot on the left and the
// odometry readout on the right.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
	units  string
	tz     string
}

// NewTerminal wraps an initialised screen.
func NewTerminal(screen tcell.Screen, distanceUnits, tz string) *Terminal {
	return &Terminal{screen: screen, units: distanceUnits, tz: tz}
}

// Render implements playback.Sink.
func (t *Terminal) Render(f playback.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.screen
	s.Clear()
	w, h := s.Size()
	plotW := w - odometryWidth
	if plotW < 10 {
		plotW = w
	}

	if f.Unavailable {
		drawText(s, 0, 0, w, styleBanner, " DATA UNAVAILABLE: "+f.Error+" ")
	} else {
		t.drawPlot(f, plotW, h-1)
	}

	if plotW < w {
		for i, line := range f.Odometry.Lines(t.units, t.tz) {
			drawText(s, plotW+1, i+1, odometryWidth-1, styleDefault, line)
		}
	}

	status := fmt.Sprintf("%d/%d  scale %g  window %d  tick %s  [+/-] scale  [/] window  ,/. tick  q quit",
		f.Index, f.Total, f.Config.Scale, f.Config.WindowSize, f.Config.TickPeriod)
	drawText(s, 0, h-1, w, styleStatus, status)

	s.Show()
	return nil
}

// drawPlot maps the square canvas onto a plotW x plotH cell area.
func (t *Terminal) drawPlot(f playback.Frame, plotW, plotH int) {
	canvas := f.Config.CanvasSize
	if canvas <= 0 || plotW <= 0 || plotH <= 0 {
		return
	}
	cell := func(p playback.PlotPoint) (int, int, bool) {
		col := int(math.Floor(p.X / canvas * float64(plotW)))
		row := int(math.Floor(p.Y / canvas * float64(plotH)))
		return col, row, col >= 0 && col < plotW && row >= 0 && row < plotH
	}

	center := f.Config.Center()
	for _, ring := range f.Rings {
		style := styleRing
		if ring.StrokeWidth > 1 {
			style = styleOuter
		}
		for deg := 0; deg < 360; deg += 3 {
			theta := float64(deg) * math.Pi / 180
			p := playback.PlotPoint{
				X: center.X + ring.Radius*math.Sin(theta),
				Y: center.Y - ring.Radius*math.Cos(theta),
			}
			if col, row, ok := cell(p); ok {
				t.screen.SetContent(col, row, '·', nil, style)
			}
		}
	}

	for _, p := range f.Points {
		if col, row, ok := cell(p); ok {
			t.screen.SetContent(col, row, '●', nil, stylePoint)
		}
	}

	if col, row, ok := cell(center); ok {
		t.screen.SetContent(col, row, '▲', nil, styleVehicle)
	}
}

func drawText(s tcell.Screen, x, y, maxW int, style tcell.Style, text string) {
	col := 0
	for _, r := range text {
		if col >= maxW {
			return
		}
		s.SetContent(x+col, y, r, nil, style)
		col++
	}
}

// Scale and tick steps applied by the keyboard controls.
const (
	scaleStep  = 1.25
	windowStep = 10
	tickStep   = 5 * time.Millisecond
)

// HandleKeys reads keyboard events until ctx ends or the user quits, in
// which case quit is called. Keys edit the live settings; the engine picks
// the change up on its next tick.
func (t *Terminal) HandleKeys(ctx context.Context, settings *playback.Settings, quit func()) {
	events := make(chan tcell.Event, 8)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if key, isKey := ev.(*tcell.EventKey); isKey {
				if applyKey(key, settings) {
					quit()
					return
				}
			}
		}
	}
}

// applyKey applies one key press and reports whether it asked to quit.
func applyKey(ev *tcell.EventKey, settings *playback.Settings) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return true
	}
	if ev.Key() != tcell.KeyRune {
		return false
	}

	cfg := settings.Get()
	var edit playback.ViewEdit
	switch ev.Rune() {
	case 'q':
		return true
	case '+', '=':
		v := cfg.Scale * scaleStep
		edit.Scale = &v
	case '-':
		v := cfg.Scale / scaleStep
		edit.Scale = &v
	case ']':
		v := cfg.WindowSize + windowStep
		edit.WindowSize = &v
	case '[':
		v := cfg.WindowSize - windowStep
		if v < 1 {
			v = 1
		}
		edit.WindowSize = &v
	case '.':
		v := cfg.TickPeriod + tickStep
		edit.TickPeriod = &v
	case ',':
		v := cfg.TickPeriod - tickStep
		if v < time.Millisecond {
			v = time.Millisecond
		}
		edit.TickPeriod = &v
	}
	settings.Update(edit)
	return false
}
