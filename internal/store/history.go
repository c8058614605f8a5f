package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"arlo/internal/stats"
)

// WeekArchive is the snapshot kept after a weekly report is sent. WeekEnd
// is the cut-off: every pending workout logged at or before it is archived.
type WeekArchive struct {
	UserID    string
	WeekStart time.Time
	WeekEnd   time.Time
	Insights  string
	Stats     stats.WeeklyStats
}

type HistoryRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	WeekStart   string    `db:"week_start"`
	WeekEnd     string    `db:"week_end"`
	TotalVolume int       `db:"total_volume"`
	Insights    string    `db:"insights"`
	Stats       string    `db:"stats"`
	CreatedAt   time.Time `db:"created_at"`
}

// ArchiveWeek writes the history row and marks the reported workouts as
// archived in one transaction. A second archive of the same week returns
// ErrWeekArchived and changes nothing.
func (s *Store) ArchiveWeek(ctx context.Context, a WeekArchive) error {
	payload, err := json.Marshal(a.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO weekly_history (id, user_id, week_start, week_end, total_volume, insights, stats, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), a.UserID, day(a.WeekStart), day(a.WeekEnd), a.Stats.TotalWorkouts, a.Insights, string(payload), time.Now().UTC())
	if isUniqueViolation(err) {
		return fmt.Errorf("%s %s: %w", a.UserID, day(a.WeekStart), ErrWeekArchived)
	}
	if err != nil {
		return fmt.Errorf("failed to insert weekly history: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE workouts SET archived_at = ?
		WHERE user_id = ? AND archived_at IS NULL AND logged_at <= ?
	`, time.Now().UTC(), a.UserID, a.WeekEnd.UTC())
	if err != nil {
		return fmt.Errorf("failed to archive workouts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit archive: %w", err)
	}
	return nil
}

// WeekArchived reports whether the week starting at weekStart already has
// a history row.
func (s *Store) WeekArchived(ctx context.Context, userID string, weekStart time.Time) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM weekly_history WHERE user_id = ? AND week_start = ?
	`, userID, day(weekStart))
	if err != nil {
		return false, fmt.Errorf("failed to check weekly history: %w", err)
	}
	return n > 0, nil
}

// PriorWeekTotal returns the workout count of the latest archived week
// before weekStart, or nil when there is none.
func (s *Store) PriorWeekTotal(ctx context.Context, userID string, weekStart time.Time) (*int, error) {
	var total int
	err := s.db.GetContext(ctx, &total, `
		SELECT total_volume FROM weekly_history
		WHERE user_id = ? AND week_start < ?
		ORDER BY week_start DESC
		LIMIT 1
	`, userID, day(weekStart))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load prior week: %w", err)
	}
	return &total, nil
}

// History returns a user's archived weeks, newest first.
func (s *Store) History(ctx context.Context, userID string) ([]HistoryRow, error) {
	var rows []HistoryRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT * FROM weekly_history WHERE user_id = ? ORDER BY week_start DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return rows, nil
}
