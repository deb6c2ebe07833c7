package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	LedgerMovements     *prometheus.CounterVec
	LedgerUnits         *prometheus.CounterVec
	DBOperationDuration *prometheus.HistogramVec
	TenantsCreated      prometheus.Counter
}

// New registers all collectors on reg, prefixed with prefix
func New(prefix string, reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		LedgerMovements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_ledger_movements_total",
				Help: "Stock movements attempted, by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		LedgerUnits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_ledger_units_total",
				Help: "Units moved through the ledger, by type",
			},
			[]string{"type"},
		),
		DBOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		TenantsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_tenants_created_total",
				Help: "Associations created on first contact",
			},
		),
	}
}

func (m *Metrics) ObserveHTTP(method, path, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
}

// RecordMovement counts one ledger operation; units are only added on success
func (m *Metrics) RecordMovement(txType, outcome string, units int) {
	if m == nil {
		return
	}
	m.LedgerMovements.WithLabelValues(txType, outcome).Inc()
	if outcome == "success" && units > 0 {
		m.LedgerUnits.WithLabelValues(txType).Add(float64(units))
	}
}

func (m *Metrics) RecordTenantCreated() {
	if m == nil {
		return
	}
	m.TenantsCreated.Inc()
}

// TrackDBOperation returns a function that records the duration of a database operation
func (m *Metrics) TrackDBOperation(operation string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if m == nil {
			return
		}
		m.DBOperationDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
