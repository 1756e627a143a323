// Package scheduler re-assesses a fixed watch list of locations on a cron
// schedule and writes the reports to the configured sinks.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/wildfire-risk-service/internal/domain"
	"github.com/couchcryptid/wildfire-risk-service/internal/observability"
	"github.com/robfig/cron/v3"
)

// Assessor produces a report for a free-text location.
type Assessor interface {
	Assess(ctx context.Context, query string) (domain.Report, error)
}

// Loader writes a batch of reports.
type Loader interface {
	LoadBatch(ctx context.Context, reports []domain.Report) error
}

// Scheduler runs the watch list on a cron schedule. A run that is still in
// progress when the next one fires causes that tick to be skipped.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	locations []string
	assessor  Assessor
	loader    Loader
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New validates schedule (standard five-field cron or a descriptor such as
// "@hourly") and creates a Scheduler.
func New(schedule string, locations []string, assessor Assessor, loader Loader, logger *slog.Logger, metrics *observability.Metrics) (*Scheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid watch schedule %q: %w", schedule, err)
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron:      cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		schedule:  schedule,
		locations: locations,
		assessor:  assessor,
		loader:    loader,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// Start registers the watch job and starts the cron runner. Runs use ctx, so
// cancelling it aborts in-flight assessments.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("watch run failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule watch job: %w", err)
	}
	s.cron.Start()
	s.logger.Info("watch list scheduled", "schedule", s.schedule, "locations", len(s.locations))
	return nil
}

// Stop stops the cron runner. The returned context is done once any running
// job has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce assesses every watched location once and loads the successful
// reports in one batch. A failed location is logged and counted; it does not
// stop the others. It returns the number of reports loaded.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	reports := make([]domain.Report, 0, len(s.locations))
	for _, loc := range s.locations {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		report, err := s.assessor.Assess(ctx, loc)
		if err != nil {
			s.logger.Warn("watched location assessment failed", "location", loc, "error", err)
			s.metrics.SchedulerRuns.WithLabelValues("error").Inc()
			continue
		}
		s.metrics.SchedulerRuns.WithLabelValues("success").Inc()
		reports = append(reports, report)
	}

	if len(reports) == 0 {
		return 0, nil
	}
	if err := s.loader.LoadBatch(ctx, reports); err != nil {
		return 0, fmt.Errorf("load %d watch reports: %w", len(reports), err)
	}
	return len(reports), nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
