package weekly

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// Scheduler runs the weekly report on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	runner   *Runner
	logger   *log.Logger
}

// NewScheduler parses spec as a standard 5-field cron expression.
func NewScheduler(logger *log.Logger, spec string, runner *Runner) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return &Scheduler{
		cron:     cron.New(),
		schedule: schedule,
		runner:   runner,
		logger:   logger.WithPrefix("scheduler"),
	}, nil
}

// Start schedules the run. Runs use ctx and stop when it is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Schedule(s.schedule, cron.FuncJob(func() {
		report, err := s.runner.Run(ctx)
		if err != nil {
			s.logger.Error("Weekly run failed", "error", err)
			return
		}
		s.logger.Info("Weekly run finished", "sent", report.Sent, "skipped", report.Skipped, "errors", report.Errors)
	}))
	s.cron.Start()
	s.logger.Info("Scheduler started", "next", s.Next(time.Now()))
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Next returns the first run time after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}
