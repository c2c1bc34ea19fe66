package playback

// Frame is everything a rendering sink needs for one tick. Sinks only paint
// it; nothing flows back into the engine.
type Frame struct {
	Seq         uint64      `json:"seq"`
	Index       int         `json:"index"`
	Total       int         `json:"total"`
	Points      []PlotPoint `json:"points"`
	Rings       []Ring      `json:"rings"`
	Odometry    Odometry    `json:"odometry"`
	Unavailable bool        `json:"unavailable"`
	Error       string      `json:"error,omitempty"`
	Config      ViewConfig  `json:"config"`
}

// Sink receives every frame the engine produces.
type Sink interface {
	Render(Frame) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Frame) error

// Render calls f.
func (f SinkFunc) Render(fr Frame) error { return f(fr) }
