// Package worker holds the scheduled-job plumbing of the notifier: its
// environment configuration, job metrics, health endpoints and the cron job
// that runs one announcement pass.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"deadline-notify/internal/pkg/config"
)

// WorkerConfig holds the scheduled job settings.
//
// Fields are loaded from the environment with fail-open semantics: an invalid
// value falls back to its default with a warning. See LoadConfigFromEnv.
type WorkerConfig struct {
	// CronSchedule is a five-field cron expression (CRON_SCHEDULE).
	CronSchedule string

	// Timezone is used for both the schedule and the run's reference time (WORKER_TIMEZONE).
	Timezone string

	// AlertDays are the days-remaining offsets that trigger a notice (ALERT_DAYS, "0,1,7").
	AlertDays []int

	// RunTimeout bounds one announcement pass (RUN_TIMEOUT).
	RunTimeout time.Duration

	// MaxDisplay is the initial row cap per message (MAX_DISPLAY).
	MaxDisplay int

	// MessageBudget is the character limit per message (MESSAGE_BUDGET).
	MessageBudget int

	// HealthPort serves /health and /health/ready (WORKER_HEALTH_PORT).
	HealthPort int

	// SourcesFile is an optional YAML sources file (SOURCES_FILE). Empty means built-in sources.
	SourcesFile string

	// DryRun prints messages instead of posting them (DRY_RUN).
	DryRun bool

	// RunOnStart runs one pass immediately before waiting for the schedule (RUN_ON_START).
	RunOnStart bool
}

// DefaultConfig returns a WorkerConfig with default values.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:  "0 9 * * *", // every day at 09:00
		Timezone:      "Asia/Tokyo",
		AlertDays:     []int{0, 1, 7},
		RunTimeout:    10 * time.Minute,
		MaxDisplay:    25,
		MessageBudget: 2000, // Discord content limit
		HealthPort:    9091,
	}
}

// Validate checks every field and reports all problems at once.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateAlertDays(c.AlertDays); err != nil {
		errs = append(errs, err)
	}
	if err := config.ValidatePositiveDuration(c.RunTimeout); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.MaxDisplay, 1, 100); err != nil {
		errs = append(errs, fmt.Errorf("max display: %w", err))
	}
	if err := config.ValidateIntRange(c.MessageBudget, 100, 2000); err != nil {
		errs = append(errs, fmt.Errorf("message budget: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// Location returns the configured timezone, or UTC if it cannot be loaded.
func (c *WorkerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfigFromEnv loads the worker configuration from environment variables.
//
// It never fails on a malformed value: the default is used, a warning is
// logged and the fallback is recorded on metrics. The error return is
// reserved for problems that cannot be defaulted.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	apply := func(field string, result config.ConfigLoadResult) {
		if !result.FallbackApplied {
			return
		}
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field)
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	apply("cron_schedule", result)

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	apply("timezone", result)

	result = config.LoadEnvIntList("ALERT_DAYS", cfg.AlertDays, config.ValidateAlertDays)
	cfg.AlertDays = result.Value.([]int)
	apply("alert_days", result)

	result = config.LoadEnvDuration("RUN_TIMEOUT", cfg.RunTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 2*time.Hour)
	})
	cfg.RunTimeout = result.Value.(time.Duration)
	apply("run_timeout", result)

	result = config.LoadEnvInt("MAX_DISPLAY", cfg.MaxDisplay, func(v int) error {
		return config.ValidateIntRange(v, 1, 100)
	})
	cfg.MaxDisplay = result.Value.(int)
	apply("max_display", result)

	result = config.LoadEnvInt("MESSAGE_BUDGET", cfg.MessageBudget, func(v int) error {
		return config.ValidateIntRange(v, 100, 2000)
	})
	cfg.MessageBudget = result.Value.(int)
	apply("message_budget", result)

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	apply("health_port", result)

	result = config.LoadEnvBool("DRY_RUN", cfg.DryRun)
	cfg.DryRun = result.Value.(bool)
	apply("dry_run", result)

	result = config.LoadEnvBool("RUN_ON_START", cfg.RunOnStart)
	cfg.RunOnStart = result.Value.(bool)
	apply("run_on_start", result)

	cfg.SourcesFile = config.LoadEnvString("SOURCES_FILE", "")

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
