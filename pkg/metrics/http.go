package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request-level metadata for the API surface.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewHTTPMetrics registers the request metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests partitioned by route, method and status.",
	}, []string{"route", "method", "status"})
	reg.MustRegister(duration, requests)
	return &HTTPMetrics{
		duration: duration,
		requests: requests,
	}
}

// ObserveRequest records one completed request.
func (h *HTTPMetrics) ObserveRequest(route, method, status string, duration time.Duration) {
	if h == nil {
		return
	}
	if h.duration != nil {
		h.duration.WithLabelValues(normalizeLabel(route), normalizeLabel(method)).Observe(duration.Seconds())
	}
	if h.requests != nil {
		h.requests.WithLabelValues(normalizeLabel(route), normalizeLabel(method), normalizeLabel(status)).Inc()
	}
}

// CacheMetrics counts hits and misses per cache.
type CacheMetrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
}

// NewCacheMetrics registers the cache metrics on the provided registerer.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Cache hits partitioned by cache name.",
	}, []string{"cache"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Cache misses partitioned by cache name.",
	}, []string{"cache"})
	reg.MustRegister(hits, misses)
	return &CacheMetrics{hits: hits, misses: misses}
}

// IncHit increments the hit counter for the named cache.
func (c *CacheMetrics) IncHit(cache string) {
	if c == nil || c.hits == nil {
		return
	}
	c.hits.WithLabelValues(normalizeLabel(cache)).Inc()
}

// IncMiss increments the miss counter for the named cache.
func (c *CacheMetrics) IncMiss(cache string) {
	if c == nil || c.misses == nil {
		return
	}
	c.misses.WithLabelValues(normalizeLabel(cache)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
