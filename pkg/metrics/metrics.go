package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BoardAccessChecks counts board access decisions by action and outcome (allowed|denied|error).
	BoardAccessChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_board_access_checks_total",
			Help: "Total number of board access checks",
		},
		[]string{"action", "result"},
	)

	// LayoutReconciliations counts reconcile-and-apply calls by terminal state (applied|denied|aborted|failed).
	LayoutReconciliations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_layout_reconciliations_total",
			Help: "Total number of layout reconciliation calls",
		},
		[]string{"result"},
	)

	// LayoutOperations counts applied layout operations by entity (section|item|link) and kind (insert|update|delete).
	LayoutOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_layout_operations_total",
			Help: "Total number of committed layout operations",
		},
		[]string{"entity", "operation"},
	)

	// DroppedIntegrationLinks counts link references removed because the principal may not use the integration.
	DroppedIntegrationLinks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "boardsync_dropped_integration_links_total",
			Help: "Integration link references dropped during reconciliation",
		},
	)

	// ApplyDuration measures the apply phase by strategy.
	ApplyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "boardsync_layout_apply_seconds",
			Help:    "Duration of the transactional apply phase",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	// PermissionChecks counts global permission checks made by route guards.
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_permission_checks_total",
			Help: "Total number of permission checks",
		},
		[]string{"permission", "result"},
	)

	// APILatency measures HTTP request latencies by route template.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "boardsync_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// BoardAPIRequests counts requests by board API resource and outcome (ok|not_found|denied|rejected|error).
	BoardAPIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boardsync_board_api_requests_total",
			Help: "Board API requests by resource and outcome",
		},
		[]string{"resource", "outcome"},
	)
)
