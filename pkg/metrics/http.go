package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request-level metadata plus the quota anomaly counter
// operators alert on.
type HTTPMetrics struct {
	duration       *prometheus.HistogramVec
	requests       *prometheus.CounterVec
	quotaDriftable *prometheus.CounterVec
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
	}, []string{"method", "route"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route, and status.",
	}, []string{"method", "route", "status"})
	quotaDriftable := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quota_adjustment_failures_total",
		Help: "Quota adjustments rejected by the non-negativity guard.",
	}, []string{"operation"})
	reg.MustRegister(duration, requests, quotaDriftable)
	return &HTTPMetrics{
		duration:       duration,
		requests:       requests,
		quotaDriftable: quotaDriftable,
	}
}

// ObserveRequest records one completed request.
func (m *HTTPMetrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(method), normalizeLabel(route)).Observe(elapsed.Seconds())
	m.requests.WithLabelValues(normalizeLabel(method), normalizeLabel(route), status).Inc()
}

// IncQuotaAdjustmentFailure counts a guard rejection for the named operation.
func (m *HTTPMetrics) IncQuotaAdjustmentFailure(operation string) {
	if m == nil || m.quotaDriftable == nil {
		return
	}
	m.quotaDriftable.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(value string) string {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" {
		return "unknown"
	}
	return v
}
