// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics track the collection pipeline stages
var (
	// StageErrorsTotal counts pipeline stage failures by stage name
	StageErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_errors_total",
			Help: "Total number of pipeline stage failures",
		},
		[]string{"stage"},
	)

	// ArticlesCollectedTotal counts collected articles by topic and result
	ArticlesCollectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_collected_total",
			Help: "Total number of articles processed during collection",
		},
		[]string{"topic", "result"}, // result: inserted, duplicated
	)

	// ArticlesDeduplicatedTotal counts articles removed as near-duplicates
	ArticlesDeduplicatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_deduplicated_total",
			Help: "Total number of articles removed by fingerprint deduplication",
		},
	)

	// ArticlesExcludedTotal counts articles hidden by the filter stage
	ArticlesExcludedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_excluded_total",
			Help: "Total number of articles excluded by filter rules",
		},
	)

	// NotificationsTotal counts announcement delivery attempts by result
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of announcement delivery attempts",
		},
		[]string{"result"}, // result: success, failure
	)
)

// Bot metrics track Telegram update handling
var (
	// BotUpdatesTotal counts handled bot updates by kind
	BotUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of Telegram updates handled",
		},
		[]string{"kind"}, // kind: command name or callback action
	)

	// BotUpdateDuration measures how long an update takes to handle
	BotUpdateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bot_update_duration_seconds",
			Help:    "Time taken to handle a Telegram update",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)

	// ResponsesRecordedTotal counts stored user responses by value
	ResponsesRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "responses_recorded_total",
			Help: "Total number of user responses recorded",
		},
		[]string{"response"}, // response: like, dislike
	)
)

// Inventory metrics track database state
var (
	// ArticlesActiveTotal tracks the number of servable articles
	ArticlesActiveTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "articles_active_total",
			Help: "Number of servable articles in the database",
		},
	)
)
