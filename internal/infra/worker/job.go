package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"deadline-notify/internal/observability/logging"
	"deadline-notify/internal/observability/slo"
	"deadline-notify/internal/usecase/announce"
)

// Announcer runs one announcement pass at reference time now.
type Announcer interface {
	Run(ctx context.Context, now time.Time) (announce.Report, error)
}

// Job runs an Announcer with a timeout and records the outcome on metrics
// and on the health server.
type Job struct {
	announcer Announcer
	metrics   *WorkerMetrics
	health    *HealthServer
	slo       *slo.Tracker
	timeout   time.Duration
	location  *time.Location
	logger    *slog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewJob creates a Job. health may be nil.
func NewJob(announcer Announcer, cfg *WorkerConfig, metrics *WorkerMetrics, health *HealthServer, logger *slog.Logger) *Job {
	return &Job{
		announcer: announcer,
		metrics:   metrics,
		health:    health,
		slo:       slo.NewTracker(slo.DefaultWindow),
		timeout:   cfg.RunTimeout,
		location:  cfg.Location(),
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one pass. The reference time is the current time in the
// configured timezone, so "days remaining" is counted on that calendar.
func (j *Job) Run(ctx context.Context) (announce.Report, error) {
	runID := logging.NewRunID()
	ctx = logging.ContextWithRunID(ctx, runID)
	logger := logging.WithRunID(ctx, j.logger)

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	startTime := j.now()
	j.metrics.RecordJobRun("started")
	logger.Info("announcement started")

	report, err := j.announcer.Run(ctx, startTime.In(j.location))
	finishedAt := j.now()
	j.metrics.RecordJobDuration(finishedAt.Sub(startTime).Seconds())
	j.metrics.RecordMessagesSent(report.Sent)
	successRatio := j.slo.Observe(err == nil, finishedAt.Sub(startTime))

	status := RunStatus{
		RunID:      runID,
		StartedAt:  startTime,
		FinishedAt: finishedAt,
		Sent:       report.Sent,
		Success:    err == nil,
	}

	if err != nil {
		status.Error = logging.SanitizeError(err)
		j.metrics.RecordJobRun("failure")
		logger.Error("announcement failed",
			slog.Int("sent", report.Sent),
			slog.Float64("success_ratio", successRatio),
			slog.String("error", status.Error))
		if successRatio < slo.RunSuccessSLO {
			logger.Warn("run success ratio below target",
				slog.Float64("success_ratio", successRatio),
				slog.Float64("target", slo.RunSuccessSLO))
		}
	} else {
		j.metrics.RecordJobRun("success")
		j.metrics.RecordLastSuccess()
		logger.Info("announcement completed",
			slog.Int("sources", len(report.Sources)),
			slog.Int("sent", report.Sent),
			slog.Bool("nothing_found", report.NothingFound),
			slog.Duration("duration", finishedAt.Sub(startTime)))
	}

	if j.health != nil {
		j.health.RecordRun(status)
	}
	return report, err
}

// Scheduler triggers a Job on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	logger   *slog.Logger
}

// NewScheduler registers job under cfg.CronSchedule in cfg's timezone.
// Runs never overlap: a trigger that fires while the previous pass is still
// running is skipped.
func NewScheduler(ctx context.Context, cfg *WorkerConfig, job *Job, logger *slog.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(cfg.Location()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	_, err := c.AddFunc(cfg.CronSchedule, func() {
		_, _ = job.Run(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("add cron job: %w", err)
	}

	return &Scheduler{cron: c, schedule: cfg.CronSchedule, logger: logger}, nil
}

// Start begins triggering in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", slog.String("schedule", s.schedule))
}

// Stop stops triggering and waits until a running pass has returned or ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.logger.Info("scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

// Next returns the next trigger time, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
