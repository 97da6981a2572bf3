package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the Prometheus metrics for protect decisions. The
// core engine stays metrics-free; adapters record after each Protect
// call.
type Collector struct {
	// decisions counts decisions by conclusion and reason kind.
	decisions *prometheus.CounterVec

	// cacheHits counts decisions served from the block cache.
	cacheHits prometheus.Counter

	// latency tracks Protect wall time by conclusion.
	latency *prometheus.HistogramVec
}

// NewCollector creates the decision metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer for the default registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "aegis",
				Name:      "decisions_total",
				Help:      "Protect decisions by conclusion and reason kind.",
			},
			[]string{"conclusion", "reason"},
		),
		cacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "aegis",
				Name:      "block_cache_hits_total",
				Help:      "Decisions served from the local block cache.",
			},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "aegis",
				Name:      "protect_duration_seconds",
				Help:      "Wall time of Protect calls by conclusion.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"conclusion"},
		),
	}

	reg.MustRegister(c.decisions, c.cacheHits, c.latency)
	return c
}

// RecordDecision counts one decision.
func (c *Collector) RecordDecision(conclusion, reason string, seconds float64) {
	c.decisions.WithLabelValues(conclusion, reason).Inc()
	c.latency.WithLabelValues(conclusion).Observe(seconds)
}

// RecordCacheHit counts one block-cache hit.
func (c *Collector) RecordCacheHit() {
	c.cacheHits.Inc()
}
