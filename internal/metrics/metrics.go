package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskboard",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "taskboard",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// CascadeFailuresTotal counts pendingTasks/unassign writes that failed after
	// the primary write had already succeeded.
	CascadeFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskboard",
		Name:      "cascade_failures_total",
		Help:      "Failed secondary writes keeping User.pendingTasks in sync.",
	}, []string{"op"})

	RateLimitRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "taskboard",
		Name:      "rate_limit_rejected_total",
		Help:      "Requests rejected with 429.",
	})
)
