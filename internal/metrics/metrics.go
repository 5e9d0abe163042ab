// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, path, and status code.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "humanizer_requests_total",
		Help: "Total HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// CacheLookupsTotal counts response cache lookups by result (hit or miss).
	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "humanizer_cache_lookups_total",
		Help: "Response cache lookups by result.",
	}, []string{"result"})

	CacheEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "humanizer_cache_evictions_total",
		Help: "Responses evicted from the cache to respect its size bound.",
	})

	CacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "humanizer_cache_entries",
		Help: "Number of responses currently cached.",
	})

	// RewriteDuration tracks provider latency by outcome (ok or error).
	RewriteDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "humanizer_rewrite_duration_seconds",
		Help:    "Time spent waiting for the rewrite provider.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"outcome"})

	// InputChars tracks the distribution of input text lengths.
	InputChars = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "humanizer_input_chars",
		Help:    "Number of characters in humanize input text.",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})
)
