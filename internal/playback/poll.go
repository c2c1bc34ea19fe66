package playback

import (
	"context"

	"github.com/banshee-data/scanview/internal/monitoring"
	"github.com/banshee-data/scanview/internal/scan"
	"github.com/banshee-data/scanview/internal/timeutil"
)

// Source is the data-origin collaborator: one request, one full sequence.
type Source interface {
	Fetch(ctx context.Context) (scan.Sequence, error)
}

// Poller performs fetches against a Source and installs the results into a
// SampleStore. It never retries; the next scheduled poll is the retry.
type Poller struct {
	source  Source
	store   *SampleStore
	clock   timeutil.Clock
	metrics *monitoring.Metrics
}

// NewPoller creates a Poller. metrics may be nil.
func NewPoller(src Source, store *SampleStore, clock timeutil.Clock, metrics *monitoring.Metrics) *Poller {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Poller{source: src, store: store, clock: clock, metrics: metrics}
}

// Poll fetches once and installs the outcome.
func (p *Poller) Poll(ctx context.Context) error {
	seq, err := p.source.Fetch(ctx)
	p.Install(seq, err)
	return err
}

// Install records a fetch outcome: on success the store is replaced and its
// error cleared, on failure the previous sequence stays and the error is
// recorded.
func (p *Poller) Install(seq scan.Sequence, err error) {
	if err != nil {
		p.store.Fail(err)
		monitoring.Logf("[poll] fetch failed, keeping %d samples: %v", p.store.Len(), err)
	} else {
		p.store.Replace(seq, p.clock.Now())
	}
	p.metrics.ObserveFetch(err, p.store.Len())
}
