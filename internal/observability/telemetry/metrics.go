package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nutritrack_reports_created_total",
		Help: "Total number of report creation requests accepted",
	})

	ReportRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nutritrack_report_runs_total",
		Help: "Total number of finished report aggregation runs",
	}, []string{"outcome"})

	ReportsProcessing = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nutritrack_reports_processing",
		Help: "Number of report aggregations currently in flight",
	})

	ReportGenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nutritrack_report_generation_seconds",
		Help:    "Wall-clock duration of report aggregation runs",
		Buckets: prometheus.DefBuckets,
	})

	ReportExportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nutritrack_report_exports_total",
		Help: "Total number of report CSV downloads",
	})
)
