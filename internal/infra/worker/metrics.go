package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// JobMetrics provides Prometheus metrics for scheduled pipeline runs.
type JobMetrics struct {
	// JobRunsTotal counts pipeline runs by status (success/failure).
	JobRunsTotal *prometheus.CounterVec

	// JobDurationSeconds measures pipeline run duration.
	JobDurationSeconds prometheus.Histogram

	// JobLastSuccessTimestamp records the Unix timestamp of the last
	// successful run. Alert on staleness to catch silent failures.
	JobLastSuccessTimestamp prometheus.Gauge

	// ConfigFallbacksTotal counts configuration values replaced by
	// defaults during fail-open loading.
	ConfigFallbacksTotal *prometheus.CounterVec
}

// NewJobMetrics creates and registers the worker metrics.
func NewJobMetrics() *JobMetrics {
	return &JobMetrics{
		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of pipeline runs by status",
		}, []string{"status"}),

		JobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of pipeline runs in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		JobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful pipeline run",
		}),

		ConfigFallbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_config_fallbacks_total",
			Help: "Total number of configuration fallbacks applied",
		}, []string{"field"}),
	}
}

// RecordJobRun increments the run counter. Status should be "success"
// or "failure".
func (m *JobMetrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes the duration of one run in seconds.
func (m *JobMetrics) RecordJobDuration(seconds float64) {
	m.JobDurationSeconds.Observe(seconds)
}

// RecordLastSuccess stamps the last successful run at the current time.
func (m *JobMetrics) RecordLastSuccess() {
	m.JobLastSuccessTimestamp.SetToCurrentTime()
}

// RecordConfigFallback counts a configuration field that fell back to
// its default.
func (m *JobMetrics) RecordConfigFallback(field string) {
	m.ConfigFallbacksTotal.WithLabelValues(field).Inc()
}
