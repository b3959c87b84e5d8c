package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	registry  *prometheus.Registry
	generated *prometheus.CounterVec
	failures  *prometheus.CounterVec
	attempts  *prometheus.HistogramVec
	latency   *prometheus.HistogramVec
	errors    *prometheus.CounterVec
	ingested  *prometheus.CounterVec
}

// New creates a recorder with its own registry, pre-loaded with the Go and
// process collectors.
func New() *Recorder {
	r := &Recorder{
		registry:  prometheus.NewRegistry(),
		generated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mm_combinations_generated_total",
				Help: "Total number of combinations generated",
			},
			[]string{"game"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mm_generation_failures_total",
				Help: "Generation slots that produced no combination",
			},
			[]string{"game", "reason"},
		),
		attempts: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mm_generation_attempts",
				Help:    "Candidates drawn per accepted combination",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"game"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mm_operation_duration_seconds",
				Help:    "Duration of engine operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mm_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"component"},
		),
		ingested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mm_draws_ingested_total",
				Help: "Draws written through the ingestion topic",
			},
			[]string{"game"},
		),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.generated, r.failures, r.attempts, r.latency, r.errors, r.ingested,
	)
	return r
}

// Registry is served on the metrics endpoint.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) RecordGenerated(game string, n int) {
	r.generated.WithLabelValues(game).Add(float64(n))
}

func (r *Recorder) RecordGenerationFailure(game, reason string) {
	r.failures.WithLabelValues(game, reason).Inc()
}

func (r *Recorder) RecordAttempts(game string, attempts int) {
	r.attempts.WithLabelValues(game).Observe(float64(attempts))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(component string) {
	r.errors.WithLabelValues(component).Inc()
}

func (r *Recorder) RecordDrawIngested(game string) {
	r.ingested.WithLabelValues(game).Inc()
}
