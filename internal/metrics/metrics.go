// internal/metrics/metrics.go

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution Metrics
var (
	// ResolutionsTotal tracks player resolutions by strategy (alias, substring, oracle) and outcome
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_resolutions_total",
			Help: "Player resolutions by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	// OracleDuration tracks oracle call latency in seconds
	OracleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_request_duration_seconds",
			Help:    "Oracle request duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	// KnowledgeBasePlayers tracks the number of players in the knowledge base
	KnowledgeBasePlayers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "knowledge_base_players",
			Help: "Number of players in the knowledge base",
		},
	)
)

// Collection Metrics
var (
	// SearchPagesTotal tracks fetched search pages by status (ok, transport_error, parse_error)
	SearchPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_pages_total",
			Help: "Search pages fetched by status",
		},
		[]string{"status"},
	)

	// PostsAnalyzedTotal tracks posts that were scored and stored
	PostsAnalyzedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "posts_analyzed_total",
			Help: "Total posts scored and stored",
		},
	)

	// PostsSkippedTotal tracks posts skipped by reason (malformed, no_text, phrase)
	PostsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_skipped_total",
			Help: "Posts skipped during collection by reason",
		},
		[]string{"reason"},
	)
)

// Analysis Metrics
var (
	// AnalysesTotal tracks end-to-end analyses by outcome (ok, player_not_found, no_content, error)
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "End-to-end sentiment analyses by outcome",
		},
		[]string{"outcome"},
	)

	// AnalysisDuration tracks end-to-end analysis latency in seconds
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "End-to-end sentiment analysis duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// EventPublishErrors tracks failed analysis event publications
	EventPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_event_publish_errors_total",
			Help: "Analysis events that could not be published",
		},
	)
)
