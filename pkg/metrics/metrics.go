// Package metrics holds prometheus collectors of mlpipe.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "mlpipe"

// results of blessed model resolution.
const (
	ResolutionFound  = "found"
	ResolutionAbsent = "absent"
	ResolutionError  = "error"
)

// decisions of the caching layer.
const (
	CacheHit      = "hit"
	CacheMiss     = "miss"
	CacheDisabled = "disabled"
)

type Metrics struct {
	resolutions    *prometheus.CounterVec
	cacheDecisions *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates collectors and registers them to reg.
//
// When reg is nil, collectors are not registered anywhere.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		resolutions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "blessed_model_resolutions_total",
				Help:      "Total number of blessed model resolutions by result.",
			},
			[]string{"result"},
		),
		cacheDecisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "execution_cache_decisions_total",
				Help:      "Total number of caching decisions by result.",
			},
			[]string{"result"},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// Nop returns unregistered collectors.
func Nop() *Metrics {
	return New(nil)
}

func (m *Metrics) Resolved(result string) {
	m.resolutions.WithLabelValues(result).Inc()
}

func (m *Metrics) CacheDecided(result string) {
	m.cacheDecisions.WithLabelValues(result).Inc()
}

func (m *Metrics) HTTPRequest(method, path string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Resolutions returns the counter of resolutions for result. It is for tests.
func (m *Metrics) Resolutions(result string) prometheus.Counter {
	return m.resolutions.WithLabelValues(result)
}

// CacheDecisions returns the counter of caching decisions for result. It is for tests.
func (m *Metrics) CacheDecisions(result string) prometheus.Counter {
	return m.cacheDecisions.WithLabelValues(result)
}

// HTTPRequests returns the counter of HTTP requests. It is for tests.
func (m *Metrics) HTTPRequests(method, path string, status int) prometheus.Counter {
	return m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status))
}
