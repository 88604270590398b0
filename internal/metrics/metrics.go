// Package metrics defines the Prometheus collectors for the realtime hub.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Connection Lifecycle Metrics
var (
	// HubActiveConnections tracks the current number of live connections
	HubActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_active_connections",
			Help: "Current number of live realtime connections",
		},
	)

	// HubConnectionsTotal tracks total connections ever accepted
	HubConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_connections_total",
			Help: "Total realtime connections accepted since start",
		},
	)

	// HubConnectionsRejectedTotal tracks registrations refused at capacity
	HubConnectionsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_connections_rejected_total",
			Help: "Connections refused because the hub was at max capacity",
		},
	)

	// HubStaleEvictionsTotal tracks connections evicted by the liveness supervisor
	HubStaleEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_stale_evictions_total",
			Help: "Connections evicted after exceeding the activity timeout",
		},
	)
)

// Message Flow Metrics
var (
	// HubMessagesSentTotal tracks messages enqueued for delivery
	HubMessagesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_messages_sent_total",
			Help: "Total messages enqueued to connection send queues",
		},
	)

	// HubMessagesReceivedTotal tracks inbound messages from clients
	HubMessagesReceivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_messages_received_total",
			Help: "Total inbound messages received from clients",
		},
	)

	// HubBytesSentTotal tracks outbound payload bytes
	HubBytesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_bytes_sent_total",
			Help: "Total outbound payload bytes enqueued",
		},
	)

	// HubBytesReceivedTotal tracks inbound payload bytes
	HubBytesReceivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_bytes_received_total",
			Help: "Total inbound payload bytes received",
		},
	)

	// HubQueueFullDropsTotal tracks messages dropped on full send queues
	HubQueueFullDropsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_queue_full_drops_total",
			Help: "Messages dropped because a connection send queue was full",
		},
	)

	// HubBroadcastDuration tracks fan-out duration per broadcast call
	HubBroadcastDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hub_broadcast_duration_seconds",
			Help:    "Broadcast fan-out duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		},
	)

	// HubErrorsTotal tracks hub errors by type
	HubErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_errors_total",
			Help: "Total hub errors by error type",
		},
		[]string{"type"},
	)
)

// Liveness Metrics
var (
	// HubPingLatencySeconds tracks measured ping round-trip latency
	HubPingLatencySeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hub_ping_latency_seconds",
			Help:    "Ping round-trip latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	// HubDebugLogEntries tracks the current debug ring buffer size
	HubDebugLogEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_debug_log_entries",
			Help: "Current number of entries in the debug ring buffer",
		},
	)
)
