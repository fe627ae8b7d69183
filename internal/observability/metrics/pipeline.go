package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline tracks the intake pipeline: provider calls, uploads, indexing and
// search-fallback activity.
type Pipeline struct {
	uploadsTotal         *prometheus.CounterVec
	providerCallDuration *prometheus.HistogramVec
	indexFailuresTotal   prometheus.Counter
	searchFallbackTotal  prometheus.Counter
	searchRequestsTotal  *prometheus.CounterVec
}

func NewPipeline(registry *prometheus.Registry) *Pipeline {
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "pipeline",
			Name:      "uploads_total",
			Help:      "Total upload attempts by provider and outcome.",
		},
		[]string{"provider", "status"},
	)
	providerCallDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "intake",
			Subsystem: "pipeline",
			Name:      "provider_call_duration_seconds",
			Help:      "Duration of metadata provider calls.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)
	indexFailuresTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "search",
			Name:      "index_failures_total",
			Help:      "Documents left unindexed after a failed submit.",
		},
	)
	searchFallbackTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "search",
			Name:      "fallback_total",
			Help:      "Search requests served by the local linear fallback.",
		},
	)
	searchRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Search requests by result source.",
		},
		[]string{"source"},
	)

	registry.MustRegister(
		uploadsTotal,
		providerCallDuration,
		indexFailuresTotal,
		searchFallbackTotal,
		searchRequestsTotal,
	)

	return &Pipeline{
		uploadsTotal:         uploadsTotal,
		providerCallDuration: providerCallDuration,
		indexFailuresTotal:   indexFailuresTotal,
		searchFallbackTotal:  searchFallbackTotal,
		searchRequestsTotal:  searchRequestsTotal,
	}
}

func (p *Pipeline) RecordUpload(provider, status string) {
	if p == nil {
		return
	}
	p.uploadsTotal.WithLabelValues(provider, status).Inc()
}

func (p *Pipeline) ObserveProviderCall(provider string, d time.Duration) {
	if p == nil {
		return
	}
	p.providerCallDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func (p *Pipeline) RecordIndexFailure() {
	if p == nil {
		return
	}
	p.indexFailuresTotal.Inc()
}

func (p *Pipeline) RecordSearch(source string) {
	if p == nil {
		return
	}
	p.searchRequestsTotal.WithLabelValues(source).Inc()
	if source == "local-fallback" {
		p.searchFallbackTotal.Inc()
	}
}
