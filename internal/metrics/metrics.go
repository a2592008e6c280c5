// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "white_rabbit"

var (
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of completion requests sent to the LLM provider.",
		},
		[]string{"provider", "model", "status"},
	)
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Histogram of LLM completion latencies.",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"provider", "model"},
	)
	NarrativeGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "narrative_generations_total",
			Help:      "Narrative generation calls by stage and result.",
		},
		[]string{"stage", "result"},
	)
	FilteredRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filtered_records_total",
			Help:      "Generated records softened by the content rating filter, by stage.",
		},
		[]string{"stage"},
	)
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Completed player turns by chosen outcome.",
		},
		[]string{"outcome"},
	)
	GamesFinishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Finished games by result.",
		},
		[]string{"result"},
	)
)

// Generation results.
const (
	ResultSuccess     = "success"
	ResultFormatError = "format_error"
	ResultSchemaError = "schema_error"
	ResultLLMError    = "llm_error"
	ResultPromptError = "prompt_error"
)
