package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "park_explorer"

var (
	// UpstreamRequests counts upstream attempts by outcome ("success" or an error kind).
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Upstream HTTP attempts by upstream and outcome.",
	}, []string{"upstream", "outcome"})

	UpstreamRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_retries_total",
		Help:      "Retries scheduled after transient upstream failures.",
	}, []string{"upstream"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of single upstream attempts.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"upstream"})

	// BreakerState mirrors gobreaker.State: 0 closed, 1 half-open, 2 open.
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state per upstream.",
	}, []string{"upstream"})

	CanaryRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "canary_runs_total",
		Help:      "Scheduled canary lookups by result.",
	}, []string{"result"})
)
