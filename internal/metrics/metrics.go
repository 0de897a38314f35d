// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts gRPC calls by full method and status code.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapiro_grpc_requests_total",
			Help: "Total number of gRPC requests",
		},
		[]string{"method", "code"},
	)

	// RequestDuration tracks gRPC call latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tapiro_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// CacheOperations counts cache calls by operation and result.
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapiro_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"op", "result"},
	)

	// UsageEventsDropped counts API usage events discarded because the queue was full.
	UsageEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tapiro_usage_events_dropped_total",
			Help: "Total number of API usage events dropped on a full queue",
		},
	)

	// UsageEventsRecorded counts API usage events persisted by the tracker.
	UsageEventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapiro_usage_events_recorded_total",
			Help: "Total number of API usage events handled by the tracker",
		},
		[]string{"result"},
	)

	// BreakerState reports circuit breaker state (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tapiro_circuit_breaker_state",
			Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"name"},
	)

	// OutboundRequests counts calls to external services by target and outcome.
	OutboundRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapiro_outbound_requests_total",
			Help: "Total number of requests to external services",
		},
		[]string{"target", "result"},
	)

	// AIProcessing counts submissions by AI processing outcome.
	AIProcessing = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapiro_ai_processing_total",
			Help: "Total number of user data submissions by AI processing outcome",
		},
		[]string{"status"},
	)

	// ConsentChanges counts opt-in and opt-out transitions.
	ConsentChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapiro_consent_changes_total",
			Help: "Total number of per-store consent changes",
		},
		[]string{"action"},
	)

	// RateLimited counts calls rejected by the per-key rate limiter.
	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tapiro_rate_limited_total",
			Help: "Total number of API key requests rejected by the rate limiter",
		},
	)
)
