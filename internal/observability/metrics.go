// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GithubLookups counts upstream repository lookups by result (hit, fetched, failed).
	GithubLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_github_lookups_total",
		Help: "Total number of GitHub repository lookups by result",
	}, []string{"result"})

	// CascadeDeleteFailures counts account deletions that stopped at a given step.
	CascadeDeleteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_cascade_delete_failures_total",
		Help: "Total number of account deletions that failed part way, by failed step",
	}, []string{"step"})

	// FeedEventsPublished counts realtime feed events by type.
	FeedEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_feed_events_total",
		Help: "Total realtime feed events published by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)
