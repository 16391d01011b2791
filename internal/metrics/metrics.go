// Package metrics holds the Prometheus instruments for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	InvoicesCreated    prometheus.Counter
	InvoicesPaid       prometheus.Counter
	IdentitiesCreated  *prometheus.CounterVec
	InvoicesReassigned prometheus.Counter
	AuthFailures       prometheus.Counter
	RequestDuration    *prometheus.HistogramVec
}

// New creates all metrics and registers them with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all metrics against the given registerer. Tests pass a
// fresh registry so repeated wiring does not collide.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		InvoicesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "salamilink_invoices_created_total",
			Help: "Total number of invoices created",
		}),
		InvoicesPaid: factory.NewCounter(prometheus.CounterOpts{
			Name: "salamilink_invoices_paid_total",
			Help: "Total number of invoices marked paid",
		}),
		IdentitiesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "salamilink_identities_created_total",
			Help: "Total number of identities created, labeled by kind",
		}, []string{"kind"}),
		InvoicesReassigned: factory.NewCounter(prometheus.CounterOpts{
			Name: "salamilink_invoices_reassigned_total",
			Help: "Total number of invoices moved from anonymous to permanent owners",
		}),
		AuthFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "salamilink_auth_failures_total",
			Help: "Total number of authentication failures",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "salamilink_request_duration_seconds",
			Help:    "HTTP request duration in seconds, labeled by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}
