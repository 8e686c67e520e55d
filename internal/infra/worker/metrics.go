package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"deadline-notify/internal/pkg/config"
)

// WorkerMetrics holds the scheduled job metrics plus the worker's
// configuration metrics (worker_config_*).
//
// All metrics are registered with the default registry on construction, so
// NewWorkerMetrics must be called once per process.
type WorkerMetrics struct {
	*config.ConfigMetrics

	// CronJobRunsTotal counts runs by status (started, success, failure).
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds tracks how long one announcement pass takes.
	CronJobDurationSeconds prometheus.Histogram

	// CronJobMessagesSentTotal counts messages handed to the dispatcher across runs.
	CronJobMessagesSentTotal prometheus.Counter

	// CronJobLastSuccessTimestamp is the Unix time of the last run without errors.
	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates and registers the worker metrics.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by status (started/success/failure)",
		}, []string{"status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of cron job execution in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 180, 600},
		}),

		CronJobMessagesSentTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_messages_sent_total",
			Help: "Total number of messages handed to the notifier across all cron job runs",
		}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful cron job run",
		}),
	}
}

// RecordJobRun increments the run counter for status.
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes one run's duration.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordMessagesSent adds count to the sent-messages counter.
func (m *WorkerMetrics) RecordMessagesSent(count int) {
	m.CronJobMessagesSentTotal.Add(float64(count))
}

// RecordLastSuccess stamps the current time as the last successful run.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
