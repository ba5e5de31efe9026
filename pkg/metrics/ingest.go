package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics records per-batch outcome counts for receipt ingestion.
type IngestMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewIngestMetrics registers the ingest metrics on the provided registerer.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	if reg == nil {
		return &IngestMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ingest_batch_duration_seconds",
		Help:    "Duration of receipt ingest batches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_file_outcomes",
		Help: "Per-file ingest outcomes (ok, duplicate, skipped, failed).",
	}, []string{"outcome"})
	reg.MustRegister(duration, outcomes)
	return &IngestMetrics{
		duration: duration,
		outcomes: outcomes,
	}
}

// ObserveBatch records the duration of one ingest batch.
func (m *IngestMetrics) ObserveBatch(source string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// IncOutcome increments the counter for the named per-file outcome.
func (m *IngestMetrics) IncOutcome(outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
