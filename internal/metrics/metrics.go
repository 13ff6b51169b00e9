// Package metrics provides Prometheus metrics for pipeline monitoring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WorkflowsTotal counts processed workflows.
	// Labels: status (completed, failed)
	WorkflowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bomatch",
			Subsystem: "workflow",
			Name:      "runs_total",
			Help:      "Total number of workflow runs",
		},
		[]string{"status"},
	)

	// WorkflowDuration tracks end-to-end workflow processing time.
	WorkflowDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "bomatch",
			Subsystem: "workflow",
			Name:      "duration_seconds",
			Help:      "Duration of workflow runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// MaterialsExtracted counts extracted materials across all runs.
	MaterialsExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bomatch",
			Subsystem: "extraction",
			Name:      "materials_total",
			Help:      "Total number of materials extracted",
		},
	)

	// ChunksProcessed counts extraction chunk outcomes.
	// Labels: result (success, failed)
	ChunksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bomatch",
			Subsystem: "extraction",
			Name:      "chunks_total",
			Help:      "Total number of document chunks processed",
		},
		[]string{"result"},
	)

	// MatchesTotal counts match records by winning source.
	// Labels: source (knowledge_base, supplier_bom, hybrid, no_match, ...)
	MatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bomatch",
			Subsystem: "matcher",
			Name:      "matches_total",
			Help:      "Total number of match records by source",
		},
		[]string{"source"},
	)
)
