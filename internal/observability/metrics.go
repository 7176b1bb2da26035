package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	casesCreated    *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	classifierCalls *prometheus.CounterVec
	classifierTime  prometheus.Histogram
	notifications   *prometheus.CounterVec
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "case_triage_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "case_triage_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "case_triage_http_errors_total",
			Help: "Error responses by route, method and error code.",
		}, []string{"route", "method", "code"}),
		casesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "case_triage_cases_created_total",
			Help: "Cases created by category and initial status.",
		}, []string{"category", "status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "case_triage_case_transitions_total",
			Help: "Lifecycle transitions applied to cases.",
		}, []string{"transition"}),
		classifierCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "case_triage_classifier_calls_total",
			Help: "Classifier calls by outcome.",
		}, []string{"outcome"}),
		classifierTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "case_triage_classifier_duration_seconds",
			Help:    "Classifier call latency in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 8), // 0.1s .. ~12.8s
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "case_triage_notifications_total",
			Help: "Notification attempts by event type and outcome.",
		}, []string{"event", "outcome"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.errorsTotal,
		m.casesCreated,
		m.transitions,
		m.classifierCalls,
		m.classifierTime,
		m.notifications,
	)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(route, method, code).Inc()
}

// RecordCaseCreated counts a persisted case.
func (m *Metrics) RecordCaseCreated(category, status string) {
	if m == nil {
		return
	}
	m.casesCreated.WithLabelValues(category, status).Inc()
}

// RecordTransition counts a resolve, escalate or verify transition.
func (m *Metrics) RecordTransition(transition string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(transition).Inc()
}

// RecordClassification observes one classifier call.
func (m *Metrics) RecordClassification(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.classifierCalls.WithLabelValues(outcome).Inc()
	m.classifierTime.Observe(duration.Seconds())
}

// RecordNotification counts a notification attempt.
func (m *Metrics) RecordNotification(event, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(event, outcome).Inc()
}
