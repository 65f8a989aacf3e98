// Package metrics holds the Prometheus metrics for the market-data layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics the orchestrator and monitor record.
type Metrics struct {
	ProviderCalls  *prometheus.CounterVec // labels: provider, op
	ProviderErrors *prometheus.CounterVec // labels: provider, op
	CacheHits      *prometheus.CounterVec // labels: cache
	CacheMisses    *prometheus.CounterVec // labels: cache
	RateLimitWaits prometheus.Counter
	ScanRuns       prometheus.Counter
	ScanFailures   prometheus.Counter

	registry *prometheus.Registry
}

// New registers and returns the metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		ProviderCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockwatch_provider_calls_total",
			Help: "Upstream provider calls issued",
		}, []string{"provider", "op"}),
		ProviderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockwatch_provider_errors_total",
			Help: "Upstream provider calls that failed after retries",
		}, []string{"provider", "op"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockwatch_cache_hits_total",
			Help: "Lookups served from a cache tier",
		}, []string{"cache"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockwatch_cache_misses_total",
			Help: "Lookups that fell through to a provider",
		}, []string{"cache"}),
		RateLimitWaits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockwatch_rate_limit_waits_total",
			Help: "Requests delayed by the sliding-window rate limiter",
		}),
		ScanRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockwatch_scan_runs_total",
			Help: "Watchlist scan runs started",
		}),
		ScanFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockwatch_scan_symbol_failures_total",
			Help: "Per-symbol failures inside watchlist scans",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.ProviderCalls, m.ProviderErrors,
		m.CacheHits, m.CacheMisses,
		m.RateLimitWaits, m.ScanRuns, m.ScanFailures,
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
