package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics implements MetricsCollector plus the domain counters
// consumed by the payments processor and the recovery service.
type PrometheusMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	webhookEvents   *prometheus.CounterVec
	codesIssued     prometheus.Counter
	codesValidated  *prometheus.CounterVec
}

// NewPrometheusMetrics registers all collectors on the given registerer.
// Pass prometheus.DefaultRegisterer in production; tests can pass a fresh
// prometheus.NewRegistry to avoid duplicate registration panics.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recipeclub_http_request_duration_seconds",
			Help:    "HTTP request latency by method and endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		requestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipeclub_http_requests_total",
			Help: "HTTP requests by method, endpoint and status.",
		}, []string{"method", "endpoint", "status"}),
		webhookEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipeclub_payment_webhook_events_total",
			Help: "Payment webhook deliveries by processing outcome.",
		}, []string{"outcome"}),
		codesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipeclub_recovery_codes_issued_total",
			Help: "Recovery codes issued.",
		}),
		codesValidated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recipeclub_recovery_codes_validated_total",
			Help: "Recovery code validation attempts by result.",
		}, []string{"result"}),
	}
}

// RecordRequest implements MetricsCollector.
func (m *PrometheusMetrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	m.requestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, endpoint, status).Inc()
}

// WebhookProcessed records one webhook delivery outcome
// ("processed", "duplicate", "failed").
func (m *PrometheusMetrics) WebhookProcessed(outcome string) {
	m.webhookEvents.WithLabelValues(outcome).Inc()
}

// CodeIssued records one issued recovery code.
func (m *PrometheusMetrics) CodeIssued() {
	m.codesIssued.Inc()
}

// CodeValidated records one validation attempt.
func (m *PrometheusMetrics) CodeValidated(success bool) {
	result := "invalid"
	if success {
		result = "valid"
	}
	m.codesValidated.WithLabelValues(result).Inc()
}
