// Package metrics exposes prometheus instrumentation for the community
// detection engine and the edge-batch ingest service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all collectors behind a private prometheus registry
type Registry struct {
	registry *prometheus.Registry

	RunsTotal        *prometheus.CounterVec
	RunDuration      *prometheus.HistogramVec
	RunIterations    *prometheus.HistogramVec
	AffectedVertices *prometheus.HistogramVec
	BatchesTotal     *prometheus.CounterVec
	BatchEntries     prometheus.Histogram
	StreamBytes      *prometheus.CounterVec
	CommunitiesTotal prometheus.Gauge
}

// NewRegistry creates a registry with all collectors registered
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "communities_runs_total",
			Help: "Total number of propagation runs",
		},
		[]string{"mode", "status"},
	)

	r.RunDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "communities_run_duration_seconds",
			Help:    "Propagation run duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
		[]string{"mode"},
	)

	r.RunIterations = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "communities_run_iterations",
			Help:    "Passes performed per propagation run",
			Buckets: []float64{1, 2, 4, 8, 12, 16, 20},
		},
		[]string{"mode"},
	)

	r.AffectedVertices = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "communities_affected_vertices",
			Help:    "Vertices flagged for reprocessing per mutation batch",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
		[]string{"strategy"},
	)

	r.BatchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "communities_batches_total",
			Help: "Total number of mutation batches processed",
		},
		[]string{"status"},
	)

	r.BatchEntries = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "communities_batch_entries",
			Help:    "Oriented entries per mutation batch",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	r.StreamBytes = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "communities_stream_bytes_total",
			Help: "Bytes moved over the batch stream",
		},
		[]string{"direction"},
	)

	r.CommunitiesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "communities_detected_total",
			Help: "Distinct dominant communities in the last result",
		},
	)

	return r
}

// RecordRun records one propagation run
func (r *Registry) RecordRun(mode, status string, iterations int, duration time.Duration) {
	r.RunsTotal.WithLabelValues(mode, status).Inc()
	r.RunDuration.WithLabelValues(mode).Observe(duration.Seconds())
	r.RunIterations.WithLabelValues(mode).Observe(float64(iterations))
}

// RecordBatch records one mutation batch with its flagged-vertex count
func (r *Registry) RecordBatch(strategy, status string, entries, affected int) {
	r.BatchesTotal.WithLabelValues(status).Inc()
	r.BatchEntries.Observe(float64(entries))
	r.AffectedVertices.WithLabelValues(strategy).Observe(float64(affected))
}

// Handler returns the HTTP handler for the metrics endpoint
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
