package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ParseMetrics records outcomes of response envelope parsing.
type ParseMetrics struct {
	duration *prometheus.HistogramVec
	parsed   *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

// NewParseMetrics registers the envelope parsing metrics on the provided registerer.
func NewParseMetrics(reg prometheus.Registerer) *ParseMetrics {
	if reg == nil {
		return &ParseMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inspect_duration_seconds",
		Help:    "Duration of envelope inspections in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	parsed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "envelope_parsed_total",
		Help: "Successfully parsed response envelopes by shape.",
	}, []string{"shape"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "envelope_rejected_total",
		Help: "Rejected response bodies by reason.",
	}, []string{"reason"})
	reg.MustRegister(duration, parsed, rejected)
	return &ParseMetrics{
		duration: duration,
		parsed:   parsed,
		rejected: rejected,
	}
}

// ObserveDuration records how long an inspection took, labeled by result.
func (p *ParseMetrics) ObserveDuration(result string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(result)).Observe(duration.Seconds())
}

// IncParsed increments the parsed counter for the given envelope shape.
func (p *ParseMetrics) IncParsed(shape string) {
	if p == nil || p.parsed == nil {
		return
	}
	p.parsed.WithLabelValues(normalizeLabel(shape)).Inc()
}

// IncRejected increments the rejected counter for the given reason.
func (p *ParseMetrics) IncRejected(reason string) {
	if p == nil || p.rejected == nil {
		return
	}
	p.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
