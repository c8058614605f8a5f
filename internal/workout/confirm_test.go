package workout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmation(t *testing.T) {
	tests := []struct {
		name  string
		entry LogEntry
		want  string
	}{
		{
			name: "cardio",
			entry: LogEntry{Category: Cardio, Cardio: &CardioDetails{
				Distance: floatPtr(5), DistanceUnit: UnitK, DurationMinutes: intPtr(27), Pace: "5:24/km",
			}},
			want: "✅ Workout logged!\n\nDistance: 5k\nDuration: 27 min\nPace: 5:24/km\n\nNice work 💪",
		},
		{
			name:  "cardio without fields",
			entry: LogEntry{Category: Cardio, Cardio: &CardioDetails{}},
			want:  "✅ Workout logged!\n\n\nNice work 💪",
		},
		{
			name: "single exercise",
			entry: LogEntry{Category: Strength, Exercises: []ExerciseSet{
				{Name: "bench", Weight: intPtr(225), WeightUnit: UnitLB, Reps: intPtr(10), Sets: intPtr(3)},
			}},
			want: "✅ Workout logged!\n\nExercise: bench\n225lb × 10 reps, 3 sets\n\nStrong session 🔥",
		},
		{
			name: "several exercises",
			entry: LogEntry{Category: Strength, Exercises: []ExerciseSet{
				{Name: "bench", Weight: intPtr(225), WeightUnit: UnitLB, Reps: intPtr(10), Sets: intPtr(3)},
				{Name: "squat", Weight: intPtr(315), WeightUnit: UnitLB, Reps: intPtr(5)},
				{Name: "plank"},
			}},
			want: "✅ Workout logged!\n\n3 exercises:\n• bench: 225lb × 10 reps, 3 sets\n• squat: 315lb × 5 reps\n• plank\n\nStrong session 🔥",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Confirmation(tt.entry))
		})
	}
}
