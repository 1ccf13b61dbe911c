// Package metrics holds the Prometheus collectors shared by the HTTP layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	PanicsRecoveredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "panics_recovered_total",
			Help: "Total number of recovered panics",
		},
	)

	// Business metrics
	CartValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_validations_total",
			Help: "Cart validations by result",
		},
		[]string{"result"},
	)

	CartViolationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_violations_total",
			Help: "Cart violations by violation type",
		},
		[]string{"type"},
	)

	BillingOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_operations_total",
			Help: "Billing operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	WebhooksReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_received_total",
			Help: "Webhook deliveries by topic and processing status",
		},
		[]string{"topic", "status"},
	)
)

// Status labels
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusBlocked   = "blocked"
	StatusDuplicate = "duplicate"
	StatusRejected  = "rejected"
)
