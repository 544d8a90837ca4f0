package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "laundry_http_requests_total",
		Help: "Total number of HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "laundry_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	AuditRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "laundry_audit_records_total",
		Help: "Audit rows written, by table and action.",
	}, []string{"table", "action"})

	AuditWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "laundry_audit_write_failures_total",
		Help: "Best-effort audit writes that failed.",
	})

	OutboxDispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "laundry_outbox_dispatch_total",
		Help: "Outbox publish attempts by result.",
	}, []string{"result"})

	AuditCleanupDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "laundry_audit_cleanup_deleted_total",
		Help: "Audit rows removed by retention cleanup.",
	})
)
