// Package metrics defines the Prometheus instrumentation for the
// ledger service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors incremented by the HTTP façade.
type Metrics struct {
	registry *prometheus.Registry

	ExpensesCreated     prometheus.Counter
	SettlementsRecorded prometheus.Counter
	SimplifyRuns        prometheus.Counter
	SimplifyTransfers   prometheus.Counter

	RequestDuration *prometheus.HistogramVec
}

// New creates a Metrics with its own registry, so tests can build
// isolated instances.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ExpensesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_expenses_created_total",
			Help: "Number of expense facts recorded.",
		}),
		SettlementsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_settlements_recorded_total",
			Help: "Number of settlement facts recorded, user-initiated and generated.",
		}),
		SimplifyRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_simplify_runs_total",
			Help: "Number of debt simplification runs.",
		}),
		SimplifyTransfers: factory.NewCounter(prometheus.CounterOpts{
			Name: "splitledger_simplify_transfers_total",
			Help: "Number of transfers generated by debt simplification.",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "splitledger_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
