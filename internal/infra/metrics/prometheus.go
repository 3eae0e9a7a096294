package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metacoach_analyses_total",
		Help: "Total number of analysis jobs finished, by status",
	}, []string{"status"})

	AnalysisStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "metacoach_analysis_stage_duration_seconds",
		Help:    "Duration of each analysis pipeline stage",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	StageFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metacoach_stage_failures_total",
		Help: "Stage failures, by stage and whether the analysis continued",
	}, []string{"stage", "tolerated"})

	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metacoach_frames_extracted_total",
		Help: "Total number of frames extracted across all analyses",
	})

	ModelTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metacoach_model_tokens_total",
		Help: "Tokens consumed by hosted model calls",
	}, []string{"model", "kind"})

	ModelCostDollarsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metacoach_model_cost_dollars_total",
		Help: "Estimated hosted model spend in US dollars",
	}, []string{"model"})

	MediaDownloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metacoach_media_downloads_total",
		Help: "Media downloads, by result",
	}, []string{"result"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "metacoach_active_workers",
		Help: "Number of currently active workers processing analyses",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "metacoach_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})
)
