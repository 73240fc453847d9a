// Package metrics exposes Prometheus metrics for event loading and searches.
//
// All methods are safe to call on a nil *Metrics, so components can be used
// without metrics wired in (for example from the CLI).
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nearby_events"

// Search modes used as label values
const (
	ModeNearby = "nearby"
	ModeCity   = "city"
	ModeGlobal = "global"
)

// Metrics holds the collectors registered on a private registry
type Metrics struct {
	registry *prometheus.Registry

	eventsLoaded  prometheus.Gauge
	loadDuration  prometheus.Summary
	loadFailures  *prometheus.CounterVec
	searches      *prometheus.CounterVec
	searchResults prometheus.Histogram
	locates       *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		eventsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loaded",
			Help:      "Number of events held in memory",
		}),
		loadDuration: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time spent fetching and parsing the event listing",
		}),
		loadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_failures_total",
			Help:      "Failed event listing loads by kind",
		}, []string{"kind"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Searches by mode (nearby, city, global)",
		}, []string{"mode"}),
		searchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of events returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		locates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locate_total",
			Help:      "City/postal code lookups by result (match, no_match)",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.eventsLoaded, m.loadDuration, m.loadFailures,
		m.searches, m.searchResults, m.locates,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveLoad records a successful load
func (m *Metrics) ObserveLoad(count int, took time.Duration) {
	if m == nil {
		return
	}
	m.eventsLoaded.Set(float64(count))
	m.loadDuration.Observe(took.Seconds())
}

// LoadFailed records a failed load; kind is "load" or "parse"
func (m *Metrics) LoadFailed(kind string) {
	if m == nil {
		return
	}
	m.eventsLoaded.Set(0)
	m.loadFailures.WithLabelValues(kind).Inc()
}

// ObserveSearch records a completed search
func (m *Metrics) ObserveSearch(mode string, results int) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(mode).Inc()
	m.searchResults.Observe(float64(results))
}

// ObserveLocate records a city/postal code lookup
func (m *Metrics) ObserveLocate(found bool) {
	if m == nil {
		return
	}
	result := "no_match"
	if found {
		result = "match"
	}
	m.locates.WithLabelValues(result).Inc()
}
