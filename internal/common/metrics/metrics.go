// Package metrics holds the process-wide Prometheus collectors served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "camunda"

// Job lifecycle, labelled by Zeebe task type.
var (
	WorkerJobsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "jobs_completed_total",
		Help:      "Jobs completed successfully.",
	}, []string{"task_type"})

	WorkerJobsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "jobs_failed_total",
		Help:      "Jobs reported back as failed or thrown, by error code.",
	}, []string{"task_type", "error_code"})

	WorkerJobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "job_duration_seconds",
		Help:      "Wall time from activation to completion.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"task_type"})

	WorkerJobsActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "jobs_active",
		Help:      "Jobs currently being handled.",
	}, []string{"task_type"})
)

// Facility map report outcomes.
var (
	// FacilityMapOutcomes is labelled rendered, empty, fetch_failed or render_failed.
	FacilityMapOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "facility_map",
		Name:      "reports_total",
		Help:      "Facility map reports by outcome.",
	}, []string{"outcome"})

	FacilityMapRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "facility_map",
		Name:      "rows_fetched",
		Help:      "Usable facility records per report.",
		Buckets:   []float64{0, 1, 10, 50, 100, 250, 500, 1000},
	})
)
