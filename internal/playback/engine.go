package playback

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banshee-data/scanview/internal/monitoring"
	"github.com/banshee-data/scanview/internal/scan"
	"github.com/banshee-data/scanview/internal/timeutil"
)

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	PollInterval time.Duration
	Clock        timeutil.Clock
	Metrics      *monitoring.Metrics
}

// Engine drives playback. Run owns every state transition on one goroutine:
// poll ticks, playback ticks, settings changes and fetch completions are
// handled one at a time, so a sequence replacement always lands fully
// before or fully after a tick.
type Engine struct {
	store    *SampleStore
	settings *Settings
	poller   *Poller
	source   Source
	clock    timeutil.Clock
	metrics  *monitoring.Metrics
	interval time.Duration

	// loop-owned
	cursor   Cursor
	odometry Odometry
	seq      uint64
	sinks    []Sink

	latest atomic.Pointer[Frame]

	subsMu  sync.Mutex
	subs    map[int]chan Frame
	nextSub int
}

// NewEngine creates an engine that plays samples fetched from src using the
// live parameters in settings.
func NewEngine(src Source, settings *Settings, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	store := NewSampleStore()
	return &Engine{
		store:    store,
		settings: settings,
		poller:   NewPoller(src, store, opts.Clock, opts.Metrics),
		source:   src,
		clock:    opts.Clock,
		metrics:  opts.Metrics,
		interval: opts.PollInterval,
		subs:     make(map[int]chan Frame),
	}
}

// Store returns the engine's sample store.
func (e *Engine) Store() *SampleStore { return e.store }

// Settings returns the live view settings.
func (e *Engine) Settings() *Settings { return e.settings }

// Poller returns the engine's poller.
func (e *Engine) Poller() *Poller { return e.poller }

// AddSink registers a rendering sink. Call before Run.
func (e *Engine) AddSink(s Sink) {
	e.sinks = append(e.sinks, s)
}

// Latest returns the most recently published frame.
func (e *Engine) Latest() (Frame, bool) {
	f := e.latest.Load()
	if f == nil {
		return Frame{}, false
	}
	return *f, true
}

// Subscribe returns a channel that receives published frames. A subscriber
// that falls behind only sees the newest frame.
func (e *Engine) Subscribe() (int, <-chan Frame) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	id := e.nextSub
	e.nextSub++
	ch := make(chan Frame, 1)
	e.subs[id] = ch
	return id, ch
}

// Unsubscribe removes and closes a subscription.
func (e *Engine) Unsubscribe(id int) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	if ch, ok := e.subs[id]; ok {
		delete(e.subs, id)
		close(ch)
	}
}

// Tick performs one playback step and publishes the resulting frame. It must
// only be called from the goroutine that owns the engine (Run, or a test).
func (e *Engine) Tick() Frame {
	cfg := e.settings.Get()
	seq, err := e.store.Snapshot()

	// The first visible window seeds the readout as a whole. After that
	// only the window's newest sample is applied, including after a wrap,
	// so older samples never overwrite fresher sticky values.
	first := !e.cursor.Started()
	window, _ := e.cursor.Step(seq, cfg.WindowSize)
	switch {
	case first:
		e.odometry = Fold(e.odometry, window...)
	case len(window) > 0:
		e.odometry = Apply(e.odometry, window[len(window)-1])
	}

	e.seq++
	frame := Frame{
		Seq:      e.seq,
		Index:    e.cursor.Index(),
		Total:    len(seq),
		Rings:    RangeRings(cfg.Scale, cfg.MaxRangeRing),
		Odometry: e.odometry,
		Config:   cfg,
	}
	if err != nil {
		frame.Unavailable = true
		frame.Error = err.Error()
	} else {
		frame.Points = ProjectWindow(window, cfg)
	}

	e.metrics.ObserveTick()
	e.publish(frame)
	return frame
}

func (e *Engine) publish(frame Frame) {
	e.latest.Store(&frame)

	for _, s := range e.sinks {
		if err := s.Render(frame); err != nil {
			monitoring.Logf("[playback] sink error: %v", err)
		}
	}

	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- frame:
		default:
			// drop the stale frame and keep the newest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- frame:
			default:
			}
		}
	}
}

type fetchResult struct {
	seq scan.Sequence
	err error
}

// Run polls the source every PollInterval and advances playback every
// TickPeriod until ctx is cancelled. The tick period is re-read after every
// tick and whenever the settings change, so edits apply without a restart
// and without moving the cursor. A poll is issued immediately on start.
func (e *Engine) Run(ctx context.Context) error {
	pollTicker := e.clock.NewTicker(e.interval)
	defer pollTicker.Stop()

	period := e.settings.Get().armPeriod()
	tickTimer := e.clock.NewTimer(period)
	defer tickTimer.Stop()

	results := make(chan fetchResult, 1)
	inflight := false
	startFetch := func() {
		if inflight {
			monitoring.Logf("[poll] previous fetch still in flight, skipping")
			return
		}
		inflight = true
		go func() {
			seq, err := e.source.Fetch(ctx)
			select {
			case results <- fetchResult{seq: seq, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	monitoring.Logf("[playback] started: poll every %s, tick every %s", e.interval, period)
	startFetch()

	for {
		select {
		case <-ctx.Done():
			monitoring.Logf("[playback] stopped at index %d", e.cursor.Index())
			return ctx.Err()

		case <-pollTicker.C():
			startFetch()

		case r := <-results:
			inflight = false
			if ctx.Err() != nil {
				continue
			}
			e.poller.Install(r.seq, r.err)

		case <-tickTimer.C():
			e.Tick()
			period = e.settings.Get().armPeriod()
			tickTimer.Reset(period)

		case <-e.settings.Changed():
			if p := e.settings.Get().armPeriod(); p != period {
				monitoring.Logf("[playback] tick period %s -> %s", period, p)
				period = p
				tickTimer.Stop()
				tickTimer.Reset(period)
			}
		}
	}
}
