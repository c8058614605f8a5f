package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"arlo/internal/workout"
)

type workoutRow struct {
	ID         string     `db:"id"`
	UserID     string     `db:"user_id"`
	LoggedAt   time.Time  `db:"logged_at"`
	Category   string     `db:"category"`
	Payload    string     `db:"payload"`
	ArchivedAt *time.Time `db:"archived_at"`
}

// AppendWorkout stores an entry and returns the new row id.
func (s *Store) AppendWorkout(ctx context.Context, userID string, e workout.LogEntry) (string, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("failed to encode workout: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workouts (id, user_id, logged_at, category, payload)
		VALUES (?, ?, ?, ?, ?)
	`, id, userID, e.Date.UTC(), e.Category.String(), string(payload))
	if err != nil {
		return "", fmt.Errorf("failed to insert workout: %w", err)
	}
	return id, nil
}

// PendingWorkouts returns the entries logged at or before until that no
// weekly report has archived yet, oldest first.
func (s *Store) PendingWorkouts(ctx context.Context, userID string, until time.Time) ([]workout.LogEntry, error) {
	var rows []workoutRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT * FROM workouts
		WHERE user_id = ? AND archived_at IS NULL AND logged_at <= ?
		ORDER BY logged_at, id
	`, userID, until.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to load pending workouts: %w", err)
	}
	return decodeRows(rows)
}

// Workouts returns every entry for a user, archived or not, oldest first.
func (s *Store) Workouts(ctx context.Context, userID string) ([]workout.LogEntry, error) {
	var rows []workoutRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT * FROM workouts WHERE user_id = ? ORDER BY logged_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workouts: %w", err)
	}
	return decodeRows(rows)
}

// WorkoutDates returns the log time of every entry for a user.
func (s *Store) WorkoutDates(ctx context.Context, userID string) ([]time.Time, error) {
	var dates []time.Time
	err := s.db.SelectContext(ctx, &dates, `
		SELECT logged_at FROM workouts WHERE user_id = ? ORDER BY logged_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workout dates: %w", err)
	}
	return dates, nil
}

func decodeRows(rows []workoutRow) ([]workout.LogEntry, error) {
	entries := make([]workout.LogEntry, 0, len(rows))
	for _, r := range rows {
		var e workout.LogEntry
		if err := json.Unmarshal([]byte(r.Payload), &e); err != nil {
			return nil, fmt.Errorf("failed to decode workout %s: %w", r.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
