package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menulens_http_requests_total",
			Help: "Total number of HTTP requests by route and status.",
		},
		[]string{"method", "path", "status"},
	)
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "menulens_http_request_duration_seconds",
			Help:    "HTTP request latency by route. Ask requests include model round trips.",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path", "status"},
	)
	pipelineStageDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "menulens_pipeline_stage_duration_seconds",
			Help:    "Latency of each analytics pipeline stage.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"stage", "status"},
	)
	softFailTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menulens_soft_fail_total",
			Help: "Total number of degraded insight and fallback related-question results.",
		},
		[]string{"kind"},
	)
	resultRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "menulens_result_rows",
			Help:    "Number of rows materialized per executed statement.",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		},
	)
	unsafeStatementsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "menulens_unsafe_statements_total",
			Help: "Total number of statements flagged by the keyword safety check.",
		},
	)
	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "menulens_exports_total",
			Help: "Total number of result exports written to object storage.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		pipelineStageDurationSeconds,
		softFailTotal,
		resultRows,
		unsafeStatementsTotal,
		exportsTotal,
	)
}

func ObservePipelineStage(stage, status string, elapsed time.Duration) {
	pipelineStageDurationSeconds.WithLabelValues(stage, status).Observe(elapsed.Seconds())
}

func IncrementSoftFail(kind string) {
	softFailTotal.WithLabelValues(kind).Inc()
}

func ObserveResultRows(rows int) {
	if rows < 0 {
		rows = 0
	}
	resultRows.Observe(float64(rows))
}

func IncrementUnsafeStatement() {
	unsafeStatementsTotal.Inc()
}

func ObserveExport(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	exportsTotal.WithLabelValues(status).Inc()
}
