package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Tracking metrics
	EventsTracked   *prometheus.CounterVec
	TrackErrors     *prometheus.CounterVec
	ExpandDuration  prometheus.Histogram
	IngestRequests  *prometheus.CounterVec
	IngestDuration  *prometheus.HistogramVec
	GeneratedEvents *prometheus.CounterVec

	// Sink metrics
	SinkDispatches       *prometheus.CounterVec
	SinkDispatchDuration *prometheus.HistogramVec
	SinkErrors           *prometheus.CounterVec

	// Registry metrics
	RegistryVersions prometheus.Gauge
	RegistryEvents   *prometheus.GaugeVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		EventsTracked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventledger_events_tracked_total",
				Help: "Total number of events successfully dispatched to sinks",
			},
			[]string{"category", "event"},
		),
		TrackErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventledger_track_errors_total",
				Help: "Total number of rejected track calls by failure kind",
			},
			[]string{"kind"},
		),
		ExpandDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "eventledger_expand_duration_seconds",
				Help:    "Duration of property expansion",
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
			},
		),
		IngestRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventledger_ingest_requests_total",
				Help: "Total number of ingest HTTP requests by status code",
			},
			[]string{"status"},
		),
		IngestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventledger_ingest_duration_seconds",
				Help:    "Duration of ingest HTTP requests",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"category", "event"},
		),
		GeneratedEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventledger_generated_events_total",
				Help: "Total number of demo events fired by the generator",
			},
			[]string{"category", "event", "status"},
		),
		SinkDispatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventledger_sink_dispatches_total",
				Help: "Total number of sink dispatch attempts by outcome",
			},
			[]string{"sink", "status"},
		),
		SinkDispatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eventledger_sink_dispatch_duration_seconds",
				Help:    "Duration of individual sink dispatch calls",
				Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
			},
			[]string{"sink"},
		),
		SinkErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eventledger_sink_errors_total",
				Help: "Total number of sink dispatch failures",
			},
			[]string{"sink"},
		),
		RegistryVersions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "eventledger_registry_versions",
				Help: "Number of versions declared in the loaded registry",
			},
		),
		RegistryEvents: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "eventledger_registry_events",
				Help: "Number of events declared per version and category, by retirement state",
			},
			[]string{"version", "category", "state"},
		),
	}
}

// IncEventsTracked increments the tracked events counter.
func (m *Metrics) IncEventsTracked(category, event string) {
	m.EventsTracked.WithLabelValues(category, event).Inc()
}

// IncTrackErrors increments the rejected track calls counter.
func (m *Metrics) IncTrackErrors(kind string) {
	m.TrackErrors.WithLabelValues(kind).Inc()
}

// ObserveExpandDuration records a property expansion duration in seconds.
func (m *Metrics) ObserveExpandDuration(seconds float64) {
	m.ExpandDuration.Observe(seconds)
}

// IncIngestRequests increments the ingest request counter for a status code.
func (m *Metrics) IncIngestRequests(status int) {
	m.IngestRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}

// ObserveIngestDuration records an ingest request duration in seconds.
func (m *Metrics) ObserveIngestDuration(category, event string, seconds float64) {
	m.IngestDuration.WithLabelValues(category, event).Observe(seconds)
}

// IncGeneratedEvents increments the generated demo events counter.
func (m *Metrics) IncGeneratedEvents(category, event, status string) {
	m.GeneratedEvents.WithLabelValues(category, event, status).Inc()
}

// IncSinkDispatches increments the sink dispatch counter.
func (m *Metrics) IncSinkDispatches(sink, status string) {
	m.SinkDispatches.WithLabelValues(sink, status).Inc()
}

// ObserveSinkDispatchDuration records a sink dispatch duration in seconds.
func (m *Metrics) ObserveSinkDispatchDuration(sink string, seconds float64) {
	m.SinkDispatchDuration.WithLabelValues(sink).Observe(seconds)
}

// IncSinkErrors increments the sink failure counter.
func (m *Metrics) IncSinkErrors(sink string) {
	m.SinkErrors.WithLabelValues(sink).Inc()
}

// SetRegistryVersions records the number of declared registry versions.
func (m *Metrics) SetRegistryVersions(count float64) {
	m.RegistryVersions.Set(count)
}

// SetRegistryEvents records the number of declared events for a version and
// category in a given retirement state ("active" or "retired").
func (m *Metrics) SetRegistryEvents(version int, category, state string, count float64) {
	m.RegistryEvents.WithLabelValues(strconv.Itoa(version), category, state).Set(count)
}
