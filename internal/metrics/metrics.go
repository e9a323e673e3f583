// Package metrics exposes Prometheus instrumentation for the fleet service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	recordsCreated  prometheus.Counter
	intakeRejected  *prometheus.CounterVec
	loginAttempts   *prometheus.CounterVec
	alertedRecords  prometheus.Gauge
	requestDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		recordsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fleet",
			Name:      "records_created_total",
			Help:      "Fleet records created through intake.",
		}),
		intakeRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleet",
			Name:      "intake_rejected_total",
			Help:      "Intake requests rejected by validation, by field.",
		}, []string{"field"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleet",
			Name:      "login_attempts_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		alertedRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fleet",
			Name:      "alerted_records",
			Help:      "Records due for maintenance in the last evaluated dashboard.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fleet",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
	m.registry.MustRegister(
		m.recordsCreated,
		m.intakeRejected,
		m.loginAttempts,
		m.alertedRecords,
		m.requestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, for registering extra
// collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Routes are the request paths observed under their own label. Any other
// path is observed as OtherRoute.
var Routes = []string{
	"/api/auth/login",
	"/api/auth/logout",
	"/api/auth/me",
	"/api/catalog",
	"/api/records",
	"/api/dashboard",
	"/api/alerts",
	"/api/export",
	"/health",
	"/metrics",
}

// OtherRoute and OtherMethod label requests outside the known set.
const (
	OtherRoute  = "other"
	OtherMethod = "OTHER"
)

// RouteLabel maps a request path to a fixed label so clients cannot create
// series by requesting arbitrary paths.
func RouteLabel(path string) string {
	for _, route := range Routes {
		if path == route {
			return route
		}
	}
	return OtherRoute
}

// MethodLabel maps a request method to a fixed label.
func MethodLabel(method string) string {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodHead, http.MethodOptions:
		return method
	default:
		return OtherMethod
	}
}

// RecordCreated counts a record stored through intake.
func (m *Metrics) RecordCreated() {
	if m == nil {
		return
	}
	m.recordsCreated.Inc()
}

// IntakeRejected counts an intake rejected on field. Fields come from the
// fixed set of intake validations.
func (m *Metrics) IntakeRejected(field string) {
	if m == nil {
		return
	}
	m.intakeRejected.WithLabelValues(field).Inc()
}

// LoginAttempt counts a login by outcome: "success" or "failure".
func (m *Metrics) LoginAttempt(ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.loginAttempts.WithLabelValues(result).Inc()
}

// SetAlerted records the alerted count of the last dashboard built.
func (m *Metrics) SetAlerted(n int) {
	if m == nil {
		return
	}
	m.alertedRecords.Set(float64(n))
}

// ObserveRequest records the latency of one request, labelled by
// RouteLabel and MethodLabel.
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(MethodLabel(method), RouteLabel(path), strconv.Itoa(status)).Observe(d.Seconds())
}
