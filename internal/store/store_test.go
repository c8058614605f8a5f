package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arlo/internal/stats"
	"arlo/internal/workout"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "arlo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

var monday = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

func run(at time.Time, km float64) workout.LogEntry {
	return workout.LogEntry{
		Date:     at,
		RawText:  "ran",
		Category: workout.Cardio,
		Cardio:   &workout.CardioDetails{Distance: ptr(km), DistanceUnit: workout.UnitK},
	}
}

func lift(at time.Time) workout.LogEntry {
	return workout.LogEntry{
		Date:     at,
		RawText:  "squat 315x5",
		Category: workout.Strength,
		Exercises: []workout.ExerciseSet{
			{Name: "squat", Weight: ptr(315), WeightUnit: workout.UnitLB, Reps: ptr(5)},
		},
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.UpsertUser(ctx, User{ID: "+15550001", Name: "Sam", Goal: "5k PR", Age: 34, Gender: "female", CreatedAt: created}))

	u, err := s.GetUser(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, "Sam", u.Name)
	assert.Equal(t, 34, u.Age)
	assert.Equal(t, "female", u.Gender)
	assert.Equal(t, StatusActive, u.Status)
	assert.True(t, u.Active())
	assert.True(t, created.Equal(u.CreatedAt))
	assert.False(t, u.LastMessageAt.Valid)

	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.TouchUser(ctx, "+15550001", at))
	require.NoError(t, s.TouchUser(ctx, "+15550001", at))

	require.NoError(t, s.UpsertUser(ctx, User{ID: "+15550001", Name: "Samira", Status: StatusCancelled}))
	u, err = s.GetUser(ctx, "+15550001")
	require.NoError(t, err)
	assert.Equal(t, "Samira", u.Name)
	assert.Equal(t, 2, u.MessageCount)
	assert.True(t, u.LastMessageAt.Valid)
	assert.True(t, at.Equal(u.LastMessageAt.Time))
	assert.True(t, created.Equal(u.CreatedAt))
	assert.False(t, u.Active())

	_, err = s.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.TouchUser(ctx, "nobody", at), ErrNotFound)
	assert.Error(t, s.UpsertUser(ctx, User{}))

	require.NoError(t, s.UpsertUser(ctx, User{ID: "+15550002", CreatedAt: created.Add(time.Hour)}))
	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "+15550001", users[0].ID)
}

func TestWorkouts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	entries := []workout.LogEntry{
		lift(monday.Add(30 * time.Hour)),
		run(monday.Add(7*time.Hour), 5),
		run(monday.AddDate(0, 0, 7).Add(time.Hour), 10),
		run(monday.AddDate(0, 0, -1), 3),
	}
	for _, e := range entries {
		id, err := s.AppendWorkout(ctx, "u1", e)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	}
	_, err := s.AppendWorkout(ctx, "u2", run(monday, 1))
	require.NoError(t, err)

	week, err := s.PendingWorkouts(ctx, "u1", monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, week, 3)
	assert.Equal(t, 3.0, *week[0].Cardio.Distance)
	week = week[1:]
	assert.Equal(t, workout.Cardio, week[0].Category)
	assert.Equal(t, 5.0, *week[0].Cardio.Distance)
	assert.Equal(t, entries[0].Exercises, week[1].Exercises)
	assert.True(t, entries[0].Date.Equal(week[1].Date))

	all, err := s.Workouts(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	dates, err := s.WorkoutDates(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, dates, 4)
	assert.True(t, monday.AddDate(0, 0, -1).Equal(dates[0]))
}

func TestArchiveWeek(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sunday := monday.AddDate(0, 0, 6).Add(9 * time.Hour)
	for _, e := range []workout.LogEntry{run(monday, 5), lift(monday.Add(26 * time.Hour)), run(sunday.Add(9*time.Hour), 4)} {
		_, err := s.AppendWorkout(ctx, "u1", e)
		require.NoError(t, err)
	}

	prior, err := s.PriorWeekTotal(ctx, "u1", monday)
	require.NoError(t, err)
	assert.Nil(t, prior)

	week, err := s.PendingWorkouts(ctx, "u1", sunday)
	require.NoError(t, err)
	require.Len(t, week, 2)
	summary := stats.Aggregate(week, prior)

	archived, err := s.WeekArchived(ctx, "u1", monday)
	require.NoError(t, err)
	assert.False(t, archived)

	archive := WeekArchive{
		UserID:    "u1",
		WeekStart: monday,
		WeekEnd:   sunday,
		Insights:  "Solid week",
		Stats:     summary,
	}
	require.NoError(t, s.ArchiveWeek(ctx, archive))

	archived, err = s.WeekArchived(ctx, "u1", monday)
	require.NoError(t, err)
	assert.True(t, archived)

	// The Sunday evening run was logged after the cut-off and stays pending.
	next, err := s.PendingWorkouts(ctx, "u1", sunday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, 4.0, *next[0].Cardio.Distance)

	all, err := s.Workouts(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	prior, err = s.PriorWeekTotal(ctx, "u1", monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.NotNil(t, prior)
	assert.Equal(t, 2, *prior)

	prior, err = s.PriorWeekTotal(ctx, "u1", monday)
	require.NoError(t, err)
	assert.Nil(t, prior)

	history, err := s.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "2026-03-09", history[0].WeekStart)
	assert.Equal(t, "2026-03-15", history[0].WeekEnd)
	assert.Equal(t, "Solid week", history[0].Insights)
	assert.Contains(t, history[0].Stats, `"totalWorkouts":2`)
}

func TestArchiveWeekTwice(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.AppendWorkout(ctx, "u1", run(monday, 5))
	require.NoError(t, err)

	end := monday.AddDate(0, 0, 6)
	require.NoError(t, s.ArchiveWeek(ctx, WeekArchive{UserID: "u1", WeekStart: monday, WeekEnd: end, Stats: stats.WeeklyStats{TotalWorkouts: 1}}))

	_, err = s.AppendWorkout(ctx, "u1", run(monday.Add(time.Hour), 3))
	require.NoError(t, err)

	err = s.ArchiveWeek(ctx, WeekArchive{UserID: "u1", WeekStart: monday, WeekEnd: end, Stats: stats.NoData()})
	assert.ErrorIs(t, err, ErrWeekArchived)

	// the failed archive rolled back, so the late workout is still pending
	pending, err := s.PendingWorkouts(ctx, "u1", end)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	prior, err := s.PriorWeekTotal(ctx, "u1", monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.NotNil(t, prior)
	assert.Equal(t, 1, *prior)
}

func TestMessages(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		require.NoError(t, s.AppendMessage(ctx, "u1", DirectionIncoming, fmt.Sprintf("q%d", i), at.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, s.AppendMessage(ctx, "u1", DirectionOutgoing, fmt.Sprintf("a%d", i), at.Add(time.Duration(i)*time.Minute)))
	}
	require.NoError(t, s.AppendMessage(ctx, "u2", DirectionIncoming, "other", at))

	msgs, err := s.RecentMessages(ctx, "u1", 4)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, []string{"q4", "a4", "q5", "a5"}, []string{msgs[0].Content, msgs[1].Content, msgs[2].Content, msgs[3].Content})
	assert.Equal(t, DirectionIncoming, msgs[0].Direction)
	assert.True(t, at.Add(4*time.Minute).Equal(msgs[0].CreatedAt))

	msgs, err = s.RecentMessages(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
