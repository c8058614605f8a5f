package insight

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arlo/internal/stats"
)

type fakeCompleter struct {
	reply  string
	err    error
	system string
	user   string
	calls  int
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.system, f.user = system, user
	return f.reply, f.err
}

func ptr(v int) *int { return &v }

var week = stats.WeeklyStats{
	TotalWorkouts: 5, CardioCount: 3, StrengthCount: 2, ActiveDayCount: 4,
	TotalDistance: 21.5, TotalDurationMinutes: 130,
	Balance:     &stats.Balance{CardioPercent: 60, StrengthPercent: 40},
	Consistency: stats.ConsistencyHigh,
	VolumeTrend: stats.TrendIncreasing, VolumeChangePercent: ptr(25),
}

func TestWeeklyUsesCompleter(t *testing.T) {
	fc := &fakeCompleter{reply: "Great momentum, Sam."}
	g := NewGenerator(log.New(io.Discard), fc)

	prompts := stats.BuildPrompts(week, "run a half marathon")
	got := g.Weekly(context.Background(), Profile{Name: "Sam", Goal: "run a half marathon"}, week, prompts)

	assert.Equal(t, "Great momentum, Sam.", got)
	assert.Equal(t, SystemPrompt, fc.system)
	assert.Equal(t, BuildContext(Profile{Name: "Sam", Goal: "run a half marathon"}, week, prompts), fc.user)
}

func TestWeeklyNoData(t *testing.T) {
	fc := &fakeCompleter{}
	g := NewGenerator(log.New(io.Discard), fc)

	got := g.Weekly(context.Background(), Profile{Name: "Sam"}, stats.NoData(), nil)
	assert.Contains(t, got, "Hey Sam,")
	assert.Contains(t, got, "No judgment")
	assert.Zero(t, fc.calls)

	assert.Contains(t, NoData(Profile{}), "Hey there,")
}

func TestWeeklyFallback(t *testing.T) {
	tests := []struct {
		name string
		fc   *fakeCompleter
	}{
		{"completer error", &fakeCompleter{err: errors.New("timeout")}},
		{"empty reply", &fakeCompleter{reply: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(log.New(io.Discard), tt.fc)
			got := g.Weekly(context.Background(), Profile{Name: "Sam"}, week, nil)
			assert.Equal(t, Fallback(week), got)
		})
	}

	t.Run("no completer", func(t *testing.T) {
		g := NewGenerator(log.New(io.Discard), nil)
		assert.Equal(t, Fallback(week), g.Weekly(context.Background(), Profile{}, week, nil))
	})
}

func TestBuildContext(t *testing.T) {
	got := BuildContext(Profile{Name: "Sam", Goal: "get stronger"}, week, []string{"first", "second"})
	want := `User: Sam
Goal: get stronger

Week Summary:
- Total workouts: 5
- Cardio sessions: 3
- Strength sessions: 2
- Days active: 4/7
- Total distance: 21.5km
- Volume trend: increasing (25%)

Key points to address:
- first
- second`
	assert.Equal(t, want, got)
}

func TestBuildContextDefaults(t *testing.T) {
	s := stats.WeeklyStats{TotalWorkouts: 1, StrengthCount: 1, ActiveDayCount: 1, VolumeTrend: stats.TrendUnknown}
	got := BuildContext(Profile{}, s, nil)

	require.Contains(t, got, "User: User\nGoal: General fitness")
	assert.NotContains(t, got, "Total distance")
	assert.NotContains(t, got, "Volume trend")
	assert.NotContains(t, got, "Key points")
}

func TestFallback(t *testing.T) {
	tests := []struct {
		name  string
		stats stats.WeeklyStats
		want  string
	}{
		{
			name:  "increasing and balanced",
			stats: week,
			want:  "Great week! You completed 5 workouts across 4 days. Your volume is trending up - nice progress! 📈\n\nFocus for next week: Keep the balance going",
		},
		{
			name:  "cardio heavy",
			stats: stats.WeeklyStats{TotalWorkouts: 3, ActiveDayCount: 2, Balance: &stats.Balance{CardioPercent: 100}, VolumeTrend: stats.TrendStable},
			want:  "Great week! You completed 3 workouts across 2 days. Keep that consistency going! 💪\n\nFocus for next week: Add 1-2 strength sessions",
		},
		{
			name:  "strength heavy",
			stats: stats.WeeklyStats{TotalWorkouts: 6, ActiveDayCount: 5, Balance: &stats.Balance{CardioPercent: 0, StrengthPercent: 100}},
			want:  "Great week! You completed 6 workouts across 5 days. Keep that consistency going! 💪\n\nFocus for next week: Mix in some cardio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fallback(tt.stats))
		})
	}
}
