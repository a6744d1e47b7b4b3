// Package metrics provides Prometheus metrics for the reporting service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReportsComputedTotal tracks report computations by surface and status
	ReportsComputedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "volvo_ops",
			Subsystem: "reports",
			Name:      "computed_total",
			Help:      "Total number of report computations by surface and status",
		},
		[]string{"surface", "status"},
	)

	// ReportDuration tracks report computation duration in seconds
	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "volvo_ops",
			Subsystem: "reports",
			Name:      "duration_seconds",
			Help:      "Duration of report computations in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"surface"},
	)

	// IngestLoadsTotal tracks dataset loads by dataset and status
	IngestLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "volvo_ops",
			Subsystem: "ingest",
			Name:      "loads_total",
			Help:      "Total number of dataset loads by dataset and status",
		},
		[]string{"dataset", "status"},
	)

	// IngestRowsTotal tracks rows loaded per dataset
	IngestRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "volvo_ops",
			Subsystem: "ingest",
			Name:      "rows_total",
			Help:      "Total number of rows loaded per dataset",
		},
		[]string{"dataset"},
	)

	// IngestDuration tracks dataset load duration in seconds
	IngestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "volvo_ops",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Duration of dataset loads in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"dataset"},
	)
)
