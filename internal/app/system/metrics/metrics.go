// Package metrics holds the prometheus collectors for the console.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackendCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrolldesk_backend_calls_total",
			Help: "Total number of calls made to the enrollment backend",
		},
		[]string{"endpoint", "status"},
	)

	BackendCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "enrolldesk_backend_call_duration_seconds",
			Help:    "Duration of enrollment backend calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	Approvals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrolldesk_payment_approvals_total",
			Help: "Payment approval attempts by outcome",
		},
		[]string{"outcome"},
	)

	Loads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrolldesk_listing_loads_total",
			Help: "Listing loads by listing and source (backend, snapshot, failed)",
		},
		[]string{"listing", "source"},
	)

	PollRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrolldesk_payment_polls_total",
			Help: "Payment poll fetches by result (applied, stale, failed)",
		},
		[]string{"result"},
	)

	PendingPayments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "enrolldesk_pending_payments",
			Help: "Pending payments seen by the most recent payment feed poll",
		},
	)

	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrolldesk_job_runs_total",
			Help: "Background job runs by job and result",
		},
		[]string{"job", "result"},
	)
)

// ObserveBackendCall records one backend round trip.
func ObserveBackendCall(endpoint, status string, d time.Duration) {
	BackendCalls.WithLabelValues(endpoint, status).Inc()
	BackendCallDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveApproval records the outcome of one approval attempt.
func ObserveApproval(outcome string) {
	Approvals.WithLabelValues(outcome).Inc()
}

// ObserveLoad records where a listing's rows came from.
func ObserveLoad(listing, source string) {
	Loads.WithLabelValues(listing, source).Inc()
}

// ObservePoll records the result of one poll fetch.
func ObservePoll(result string) {
	PollRuns.WithLabelValues(result).Inc()
}

// SetPendingPayments records the pending count from the payment feed.
func SetPendingPayments(n int) {
	PendingPayments.Set(float64(n))
}

// ObserveJob records one background job run.
func ObserveJob(job string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	JobRuns.WithLabelValues(job, result).Inc()
}
