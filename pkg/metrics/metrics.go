// Package metrics exposes the Prometheus registry and the API server's own
// HTTP metrics. Component metrics live in their packages (client, cache,
// ratelimit, sampler) and register themselves via promauto.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer every package metric is attached to.
var Registry = prometheus.DefaultRegisterer

// Gatherer is what Handler serves.
var Gatherer = prometheus.DefaultGatherer

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_http_requests_total",
		Help: "Total API requests by route, method and status code",
	}, []string{"route", "method", "code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_http_request_duration_seconds",
		Help:    "API request duration in seconds by route",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route"})
)

// ObserveHTTP records one served API request. route is the router pattern,
// not the raw path, to keep label cardinality bounded.
func ObserveHTTP(route, method string, code int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Sampler Metrics (pkg/sampler):
//   - sampler_requests_total{outcome} (Counter): ok, exhausted, validation, rate_limited, unauthorized, transport, upstream
//   - sampler_window_exhausted_total (Counter): logical pages past the 1000-result window
//
// Request Metrics (pkg/client):
//   - github_requests_total{endpoint, status} (Counter): GitHub requests by endpoint and HTTP status
//   - github_request_duration_seconds{endpoint} (Histogram): GitHub request duration
//   - github_errors_total{class} (Counter): rate_limit, unauthorized, network, upstream, client
//
// Cache Metrics (pkg/cache):
//   - github_cache_hits_total, github_cache_misses_total (Counter)
//   - github_304_responses_total (Counter): 304 Not Modified answered from cache
//   - github_conditional_requests_total (Counter): requests sent with If-None-Match
//   - github_cache_errors_total{operation} (Counter)
//
// Rate Limit Metrics (pkg/ratelimit):
//   - github_rate_limit_remaining{resource} (Gauge)
//   - github_rate_limit_exhausted_total{resource} (Counter)
//
// API Metrics (this package):
//   - api_http_requests_total{route, method, code} (Counter)
//   - api_http_request_duration_seconds{route} (Histogram)
//
// Example Prometheus Queries:
//
//   # Share of searches rejected by GitHub's rate limit
//   sum(rate(sampler_requests_total{outcome="rate_limited"}[5m])) / sum(rate(sampler_requests_total[5m]))
//
//   # Search quota left
//   github_rate_limit_remaining{resource="search"}
//
//   # P95 GitHub latency
//   histogram_quantile(0.95, rate(github_request_duration_seconds_bucket[5m]))
//
//   # 304 share
//   rate(github_304_responses_total[5m]) / rate(github_requests_total[5m])
