// Package metrics holds the prometheus collectors shared by the API clients and the cache.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is nil-safe: a nil *Metrics records nothing.
type Metrics struct {
	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
	cacheEvents *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "restodash",
			Name:      "api_requests_total",
			Help:      "Requests sent to the remote restaurant API.",
		}, []string{"resource", "method", "outcome"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "restodash",
			Name:      "api_request_duration_seconds",
			Help:      "Latency of requests sent to the remote restaurant API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "method"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "restodash",
			Name:      "cache_events_total",
			Help:      "Server-state cache hits, fetches, errors and invalidations.",
		}, []string{"key", "event"}),
	}
	reg.MustRegister(m.apiRequests, m.apiDuration, m.cacheEvents)
	return m
}

func (m *Metrics) ObserveAPI(resource, method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(resource, method, outcome).Inc()
	m.apiDuration.WithLabelValues(resource, method).Observe(d.Seconds())
}

// CacheEvent labels by key family ("menus/42" and "menus?owner=7" count as "menus").
func (m *Metrics) CacheEvent(key, event string) {
	if m == nil {
		return
	}
	family := key
	if i := strings.IndexAny(key, "/?"); i >= 0 {
		family = key[:i]
	}
	m.cacheEvents.WithLabelValues(family, event).Inc()
}
