// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the club portal.
var (
	// Counters.
	ProvisioningOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioning_outcomes_total",
			Help: "Total OAuth callback outcomes by result code",
		},
		[]string{"outcome"},
	)

	AccountsPurgedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accounts_purged_total",
			Help: "Total accounts deleted for failing the email domain check",
		},
		[]string{"status"},
	)

	EventRegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_registrations_total",
			Help: "Total event registration attempts by result",
		},
		[]string{"status"},
	)

	ContactMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_messages_total",
			Help: "Total contact form submissions by result",
		},
		[]string{"status"},
	)

	NotificationsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Total failed webhook notification attempts",
		},
		[]string{"reason"},
	)

	// Gauges.
	OpenSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_open",
			Help: "Sessions created minus sessions revoked since process start",
		},
	)

	// Histograms.
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "route", "status"},
	)

	ReadFanoutDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "read_fanout_duration_seconds",
			Help:    "Time taken to assemble a read-path page",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
		[]string{"page"},
	)
)

// RecordProvisioningOutcome records the result of an OAuth callback.
func RecordProvisioningOutcome(outcome string) {
	ProvisioningOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordAccountPurge records an account deletion after a domain mismatch.
func RecordAccountPurge(status string) {
	AccountsPurgedTotal.WithLabelValues(status).Inc()
}

// RecordEventRegistration records an event registration attempt.
func RecordEventRegistration(status string) {
	EventRegistrationsTotal.WithLabelValues(status).Inc()
}

// RecordContactMessage records a contact form submission.
func RecordContactMessage(status string) {
	ContactMessagesTotal.WithLabelValues(status).Inc()
}

// RecordNotificationFailed records a failed webhook notification.
func RecordNotificationFailed(reason string) {
	NotificationsFailedTotal.WithLabelValues(reason).Inc()
}

// SessionCreated increments the session gauge.
func SessionCreated() {
	OpenSessions.Inc()
}

// SessionRevoked decrements the session gauge.
func SessionRevoked() {
	OpenSessions.Dec()
}

// ObserveHTTPRequest observes the latency of an HTTP request.
func ObserveHTTPRequest(method, route, status string, seconds float64) {
	HTTPRequestDurationSeconds.WithLabelValues(method, route, status).Observe(seconds)
}

// ObserveReadFanout observes the duration of a read-path page assembly.
func ObserveReadFanout(page string, seconds float64) {
	ReadFanoutDurationSeconds.WithLabelValues(page).Observe(seconds)
}
