// Package weekly builds and delivers the weekly progress report for every
// active user, then archives the week.
package weekly

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"arlo/internal/insight"
	"arlo/internal/metrics"
	"arlo/internal/stats"
	"arlo/internal/store"
	"arlo/internal/workout"
)

const footer = "Keep up the momentum! What's your focus for next week?"

// Store is the persistence the weekly run needs.
type Store interface {
	ListUsers(ctx context.Context) ([]store.User, error)
	PendingWorkouts(ctx context.Context, userID string, until time.Time) ([]workout.LogEntry, error)
	WeekArchived(ctx context.Context, userID string, weekStart time.Time) (bool, error)
	PriorWeekTotal(ctx context.Context, userID string, weekStart time.Time) (*int, error)
	ArchiveWeek(ctx context.Context, a store.WeekArchive) error
}

// Writer turns a week's stats into summary text.
type Writer interface {
	Weekly(ctx context.Context, p insight.Profile, s stats.WeeklyStats, prompts []string) string
}

// Report counts the outcome of one run.
type Report struct {
	Sent    int
	Skipped int
	Errors  int
}

type Runner struct {
	store    Store
	writer   Writer
	notifier Notifier
	minAge   time.Duration
	now      func() time.Time
	logger   *log.Logger
}

// NewRunner skips accounts younger than minAgeDays.
func NewRunner(logger *log.Logger, st Store, writer Writer, notifier Notifier, minAgeDays int) *Runner {
	return &Runner{
		store:    st,
		writer:   writer,
		notifier: notifier,
		minAge:   time.Duration(minAgeDays) * 24 * time.Hour,
		now:      time.Now,
		logger:   logger.WithPrefix("weekly"),
	}
}

// Run processes every user. A failure for one user is counted and the run
// continues; only failing to list users or cancellation ends it early.
// Users whose week is already archived are skipped, so a repeated run in
// the same week sends nothing twice.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	defer func() { metrics.WeeklyRunDuration.Observe(time.Since(start).Seconds()) }()

	r.logger.Info("Starting weekly progress check")

	users, err := r.store.ListUsers(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("error listing users: %w", err)
	}

	now := r.now()
	weekStart := stats.WeekStart(now)
	var report Report
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if !u.Active() {
			r.logger.Info("Skipping inactive user", "user", u.ID)
			report.Skipped++
			metrics.WeeklyReports.WithLabelValues("skipped").Inc()
			continue
		}
		if age := now.Sub(u.CreatedAt); age < r.minAge {
			r.logger.Info("Skipping new user", "user", u.ID, "days", int(age.Hours()/24))
			report.Skipped++
			metrics.WeeklyReports.WithLabelValues("skipped").Inc()
			continue
		}

		done, err := r.store.WeekArchived(ctx, u.ID, weekStart)
		if err != nil {
			r.logger.Error("Error checking weekly history", "user", u.ID, "error", err)
			report.Errors++
			metrics.WeeklyReports.WithLabelValues("error").Inc()
			continue
		}
		if done {
			r.logger.Info("Skipping user, week already reported", "user", u.ID)
			report.Skipped++
			metrics.WeeklyReports.WithLabelValues("skipped").Inc()
			continue
		}

		if err := r.runUser(ctx, u, weekStart, now); err != nil {
			r.logger.Error("Error processing user", "user", u.ID, "error", err)
			report.Errors++
			metrics.WeeklyReports.WithLabelValues("error").Inc()
			continue
		}

		r.logger.Info("Sent weekly report", "user", u.ID)
		report.Sent++
		metrics.WeeklyReports.WithLabelValues("sent").Inc()
	}

	r.logger.Info("Weekly progress check complete", "sent", report.Sent, "skipped", report.Skipped, "errors", report.Errors)
	return report, nil
}

// runUser reports every pending workout logged up to now, including any
// that arrived after the previous run, and archives exactly that set.
func (r *Runner) runUser(ctx context.Context, u store.User, weekStart, now time.Time) error {
	workouts, err := r.store.PendingWorkouts(ctx, u.ID, now)
	if err != nil {
		return fmt.Errorf("error loading workouts: %w", err)
	}

	prior, err := r.store.PriorWeekTotal(ctx, u.ID, weekStart)
	if err != nil {
		r.logger.Warn("Prior week unavailable, skipping trend", "user", u.ID, "error", err)
		prior = nil
	}

	summary := stats.Aggregate(workouts, prior)
	prompts := stats.BuildPrompts(summary, u.Goal)
	text := r.writer.Weekly(ctx, insight.Profile{Name: u.Name, Goal: u.Goal}, summary, prompts)

	if err := r.notifier.Notify(ctx, u.ID, FormatReport(weekStart, now, text)); err != nil {
		return fmt.Errorf("error sending report: %w", err)
	}

	err = r.store.ArchiveWeek(ctx, store.WeekArchive{
		UserID:    u.ID,
		WeekStart: weekStart,
		WeekEnd:   now,
		Insights:  text,
		Stats:     summary,
	})
	if err != nil {
		return fmt.Errorf("error archiving week: %w", err)
	}
	return nil
}

// FormatReport wraps the summary for delivery, e.g. "📊 Week of Mar 9-15".
func FormatReport(weekStart, weekEnd time.Time, text string) string {
	label := weekStart.Format("Jan 2") + "-" + weekEnd.Format("2")
	return fmt.Sprintf("📊 Week of %s\n\n%s\n\n%s", label, text, footer)
}
