package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcome labels for scanview_fetch_total.
const (
	FetchOK     = "ok"
	FetchFailed = "error"
)

// Metrics groups the viewer's Prometheus collectors on a private registry so
// tests can create as many as they need. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Registry        *prometheus.Registry
	FetchTotal      *prometheus.CounterVec
	SamplesLoaded   prometheus.Gauge
	TicksTotal      prometheus.Counter
	DataUnavailable prometheus.Gauge
}

// NewMetrics creates and registers the viewer collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scanview",
			Name:      "fetch_total",
			Help:      "Data-origin fetches by outcome.",
		}, []string{"result"}),
		SamplesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scanview",
			Name:      "samples_loaded",
			Help:      "Number of samples in the current sequence.",
		}),
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scanview",
			Name:      "ticks_total",
			Help:      "Playback ticks executed.",
		}),
		DataUnavailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scanview",
			Name:      "data_unavailable",
			Help:      "1 while the last fetch failed and rendering is suspended.",
		}),
	}
	m.Registry.MustRegister(m.FetchTotal, m.SamplesLoaded, m.TicksTotal, m.DataUnavailable)
	return m
}

// ObserveFetch records one fetch outcome. samples is the size of the sequence
// held after the fetch, which is unchanged on failure.
func (m *Metrics) ObserveFetch(err error, samples int) {
	if m == nil {
		return
	}
	if err != nil {
		m.FetchTotal.WithLabelValues(FetchFailed).Inc()
		m.DataUnavailable.Set(1)
	} else {
		m.FetchTotal.WithLabelValues(FetchOK).Inc()
		m.DataUnavailable.Set(0)
	}
	m.SamplesLoaded.Set(float64(samples))
}

// ObserveTick counts one playback tick.
func (m *Metrics) ObserveTick() {
	if m == nil {
		return
	}
	m.TicksTotal.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
