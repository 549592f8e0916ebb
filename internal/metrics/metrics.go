package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusSuccess  = "success"
	StatusInvalid  = "invalid"
	StatusNotFound = "not_found"
	StatusError    = "error"

	OperationLookup     = "lookup"
	OperationActivate   = "activate"
	OperationDeactivate = "deactivate"
)

type Metrics struct {
	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Application
	URLCreationTotal       *prometheus.CounterVec
	URLRedirectTotal       *prometheus.CounterVec
	URLAdminOperationTotal *prometheus.CounterVec
}

// New registers all collectors on reg. Each process or test should pass its
// own registry since registering twice panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),
		URLCreationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "url_entries_created_total",
				Help: "Total number of create requests by outcome",
			},
			[]string{"status"},
		),
		URLRedirectTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "url_redirects_total",
				Help: "Total number of redirect lookups by outcome",
			},
			[]string{"status"},
		),
		URLAdminOperationTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "url_admin_operations_total",
				Help: "Total number of secret key operations by outcome",
			},
			[]string{"operation", "status"},
		),
	}
}

// RegisterDBStats exposes the connection pool statistics of db.
func RegisterDBStats(reg prometheus.Registerer, db *sql.DB, name string) error {
	return reg.Register(collectors.NewDBStatsCollector(db, name))
}

func (m *Metrics) RecordHTTP(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func (m *Metrics) RecordCreation(status string) {
	m.URLCreationTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordRedirect(status string) {
	m.URLRedirectTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordAdminOperation(operation, status string) {
	m.URLAdminOperationTotal.WithLabelValues(operation, status).Inc()
}
