package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// PipelineRuns counts finished pipeline jobs by outcome
	// ("done", "failed", "rejected", "busy", "demo").
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of analysis pipeline runs by outcome.",
		},
		[]string{"outcome"},
	)

	// PipelineStageDuration records how long each pipeline stage took.
	// Transcription and analysis wait on remote services, so buckets reach
	// into minutes.
	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_seconds",
			Help:    "Duration of analysis pipeline stages in seconds.",
			Buckets: []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	// StoreErrors counts swallowed record store failures by operation
	// ("read", "decode", "invalid", "write", "clear").
	StoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Total number of record store failures absorbed by the store.",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(PipelineRuns, PipelineStageDuration, StoreErrors)
}
