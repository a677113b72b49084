package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks live websocket connections.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_active_connections",
		Help: "Number of live websocket connections.",
	})

	// MessagesPersisted counts durably stored messages by kind.
	MessagesPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_persisted_total",
		Help: "Messages durably written to the store.",
	}, []string{"kind"})

	// PushesDelivered counts per-connection push deliveries.
	PushesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_pushes_delivered_total",
		Help: "Per-connection push deliveries that were enqueued.",
	})

	// PushesDropped counts per-connection pushes dropped because the
	// connection was closed or its buffer full.
	PushesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_pushes_dropped_total",
		Help: "Per-connection push deliveries dropped.",
	})

	// HistoryRequests counts history page fetches.
	HistoryRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_history_requests_total",
		Help: "History page requests served.",
	})
)
