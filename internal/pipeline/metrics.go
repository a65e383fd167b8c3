package pipeline

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the pipeline's Prometheus collectors. Collectors are
// created eagerly so increments are always safe; RegisterMetrics exposes
// them on the default registry at startup.
var Metrics = struct {
	RunsTotal       *prometheus.CounterVec
	VideosProcessed prometheus.Counter
	StageFailures   *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec
}{
	RunsTotal: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kptube_pipeline_runs_total",
			Help: "Completed pipeline runs, by terminal status.",
		},
		[]string{"status"},
	),
	VideosProcessed: prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kptube_pipeline_videos_processed_total",
			Help: "Videos that newly reached the transcript-completed commit.",
		},
	),
	StageFailures: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kptube_pipeline_stage_failures_total",
			Help: "Per-stage failures (list, acquire, encode, transcribe, classify).",
		},
		[]string{"stage"},
	),
	StageDuration: prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kptube_pipeline_stage_duration_seconds",
			Help:    "Duration of successful pipeline stages.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"stage"},
	),
}

// RegisterMetrics registers the pipeline collectors. Call once at startup.
func RegisterMetrics() {
	prometheus.MustRegister(
		Metrics.RunsTotal,
		Metrics.VideosProcessed,
		Metrics.StageFailures,
		Metrics.StageDuration,
	)
}
