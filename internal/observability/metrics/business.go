package metrics

import "time"

// RecordStageError records a failure in the named pipeline stage.
func RecordStageError(stage string) {
	StageErrorsTotal.WithLabelValues(stage).Inc()
}

// RecordArticlesCollected records the outcome of collecting one topic.
func RecordArticlesCollected(topic string, inserted, duplicated int64) {
	if inserted > 0 {
		ArticlesCollectedTotal.WithLabelValues(topic, "inserted").Add(float64(inserted))
	}
	if duplicated > 0 {
		ArticlesCollectedTotal.WithLabelValues(topic, "duplicated").Add(float64(duplicated))
	}
}

// RecordArticlesDeduplicated records articles removed by the dedup stage.
func RecordArticlesDeduplicated(removed int64) {
	if removed > 0 {
		ArticlesDeduplicatedTotal.Add(float64(removed))
	}
}

// RecordArticlesExcluded records articles hidden by the filter stage.
func RecordArticlesExcluded(excluded int64) {
	if excluded > 0 {
		ArticlesExcludedTotal.Add(float64(excluded))
	}
}

// RecordNotification records an announcement delivery attempt.
// Result should be either "success" or "failure".
func RecordNotification(result string) {
	NotificationsTotal.WithLabelValues(result).Inc()
}

// RecordBotUpdate records a handled Telegram update. Kind is the command
// or callback action name (e.g. "label", "like").
func RecordBotUpdate(kind string, duration time.Duration) {
	BotUpdatesTotal.WithLabelValues(kind).Inc()
	BotUpdateDuration.Observe(duration.Seconds())
}

// RecordResponse records a stored user response by value.
func RecordResponse(response string) {
	ResponsesRecordedTotal.WithLabelValues(response).Inc()
}

// UpdateArticlesActive updates the servable article count gauge.
// Updated after each pipeline run to reflect the current state.
func UpdateArticlesActive(count int64) {
	ArticlesActiveTotal.Set(float64(count))
}
