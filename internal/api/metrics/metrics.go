// Package metrics defines and registers all custom Prometheus metrics for the
// logistics dashboard. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto) and exposed by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashboard"

// ── Engine metrics ────────────────────────────────────────────────────────────

// EventsIngestedTotal counts events seen by the engine.
// Label:
//   - result: "admitted", "malformed", "duplicate", "evicted" or "rejected"
//     (dropped by the HTTP endpoint before queueing)
var EventsIngestedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_ingested_total",
		Help:      "Total number of live events seen by the engine, by outcome.",
	},
	[]string{"result"},
)

// EventLogSize is the number of events currently held in the log.
var EventLogSize = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "event_log_size",
		Help:      "Current number of events in the bounded event log.",
	},
)

// ShipmentsTracked is the number of shipments with a projection.
var ShipmentsTracked = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "shipments_tracked",
		Help:      "Current number of shipments with a derived projection.",
	},
)

// StateVersion is the version of the most recently published engine state.
var StateVersion = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "state_version",
		Help:      "Version of the most recently published engine state.",
	},
)

// ── Batching metrics ──────────────────────────────────────────────────────────

// BatchQueueDepth tracks events waiting for the next flush.
var BatchQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "batch_queue_depth",
		Help:      "Current number of events buffered for the next engine batch.",
	},
)

// BatchFlushDuration measures how long one batch takes to ingest.
var BatchFlushDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_flush_duration_seconds",
		Help:      "Duration of a single batch ingestion.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

// ── Status metrics ────────────────────────────────────────────────────────────

// StatusPushesTotal counts location status pushes.
// Label:
//   - result: "accepted", "stale", "future", "invalid"
var StatusPushesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_pushes_total",
		Help:      "Total number of location status pushes, by merge outcome.",
	},
	[]string{"result"},
)

// ── Feed metrics ──────────────────────────────────────────────────────────────

// FeedMessagesTotal counts live feed frames.
// Label:
//   - type: the parsed message kind (e.g. "event", "shipments", "ping", "unknown")
var FeedMessagesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_messages_total",
		Help:      "Total number of live feed messages received, by kind.",
	},
	[]string{"type"},
)

// FeedReconnectsTotal counts reconnect attempts after the feed dropped.
var FeedReconnectsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_reconnects_total",
		Help:      "Total number of live feed reconnect attempts.",
	},
)

// FeedConnected is 1 while the feed socket is open.
var FeedConnected = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_connected",
		Help:      "Whether the live feed socket is currently open (1) or not (0).",
	},
)

// ── Reference metrics ─────────────────────────────────────────────────────────

// ReferenceLoadsTotal counts reference data loads.
// Label:
//   - source: "cache", "primary", "fallback" or "failed"
var ReferenceLoadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reference_loads_total",
		Help:      "Total number of reference data loads, by source.",
	},
	[]string{"source"},
)
