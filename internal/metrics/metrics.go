// Package metrics defines the Prometheus instrumentation for the Setlist API.
//
// Metrics are registered on the default registry at package init and served
// by promhttp on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setlist_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "setlist_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Integrity engine metrics
	IntegrityOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setlist_integrity_operations_total",
			Help: "Referential integrity operations by outcome",
		},
		[]string{"operation", "outcome"}, // outcome: "ok", "noop", "error"
	)

	CascadeUsersScanned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "setlist_cascade_users_scanned",
			Help:    "Number of users scanned per concert cascade delete",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	CascadeUserFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "setlist_cascade_user_failures_total",
			Help: "User documents that could not be cleaned during a cascade delete",
		},
	)

	AuditFindings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setlist_audit_findings_total",
			Help: "Dangling or missing references found by the integrity audit",
		},
		[]string{"kind"},
	)
)

// Integrity outcomes
const (
	OutcomeOK    = "ok"
	OutcomeNoop  = "noop"
	OutcomeError = "error"
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordIntegrity records the outcome of an integrity operation
func RecordIntegrity(operation string, changed bool, err error) {
	outcome := OutcomeOK
	switch {
	case err != nil:
		outcome = OutcomeError
	case !changed:
		outcome = OutcomeNoop
	}
	IntegrityOperations.WithLabelValues(operation, outcome).Inc()
}
