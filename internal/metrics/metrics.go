// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus instrumentation for the controller.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsHandledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vdeskd_events_handled_total",
		Help: "Total number of queue events walked by the dispatch engine, by event type and outcome",
	}, []string{"event_type", "outcome"})

	EventsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vdeskd_events_dropped_total",
		Help: "Total number of queue events dropped without handler invocation, by reason",
	}, []string{"reason"})

	GroupSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vdeskd_events_group_suppressed_total",
		Help: "Total number of events skipped because an earlier event in the same group failed within the batch",
	})

	BatchItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vdeskd_session_batch_items_total",
		Help: "Total number of session batch operation items, by operation and result",
	}, []string{"operation", "result"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vdeskd_events_published_total",
		Help: "Total number of events published to the queue, by event type",
	}, []string{"event_type"})
)

// IncEventHandled records a walked event with its handler outcome.
func IncEventHandled(eventType, outcome string) {
	if eventType == "" {
		eventType = "unknown"
	}
	EventsHandledTotal.WithLabelValues(eventType, outcome).Inc()
}

// IncEventDropped records an event dropped before handler invocation.
func IncEventDropped(reason string) {
	EventsDroppedTotal.WithLabelValues(reason).Inc()
}

// IncBatchItem records the result of one session item inside a batch call.
func IncBatchItem(operation string, failed bool) {
	result := "succeeded"
	if failed {
		result = "failed"
	}
	BatchItemsTotal.WithLabelValues(operation, result).Inc()
}

// IncEventPublished records one event handed to the queue.
func IncEventPublished(eventType string) {
	EventsPublishedTotal.WithLabelValues(eventType).Inc()
}
