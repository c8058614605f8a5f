package workout

import (
	"fmt"
	"strconv"
	"strings"
)

// Confirmation renders the reply sent after an entry is stored.
func Confirmation(e LogEntry) string {
	var b strings.Builder
	b.WriteString("✅ Workout logged!\n\n")

	if e.Category == Cardio {
		if c := e.Cardio; c != nil {
			if c.Distance != nil {
				fmt.Fprintf(&b, "Distance: %s%s\n", formatDistance(*c.Distance), c.DistanceUnit)
			}
			if c.DurationMinutes != nil {
				fmt.Fprintf(&b, "Duration: %d min\n", *c.DurationMinutes)
			}
			if c.Pace != "" {
				fmt.Fprintf(&b, "Pace: %s\n", c.Pace)
			}
		}
		b.WriteString("\nNice work 💪")
		return b.String()
	}

	if len(e.Exercises) == 1 {
		ex := e.Exercises[0]
		fmt.Fprintf(&b, "Exercise: %s\n", ex.Name)
		if load := formatLoad(ex); load != "" {
			b.WriteString(load + "\n")
		}
	} else {
		fmt.Fprintf(&b, "%d exercises:\n", len(e.Exercises))
		for _, ex := range e.Exercises {
			b.WriteString("• " + ex.Name)
			if load := formatLoad(ex); load != "" {
				b.WriteString(": " + load)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\nStrong session 🔥")
	return b.String()
}

func formatLoad(ex ExerciseSet) string {
	if ex.Weight == nil || ex.Reps == nil {
		return ""
	}
	s := fmt.Sprintf("%d%s × %d reps", *ex.Weight, ex.WeightUnit, *ex.Reps)
	if ex.Sets != nil {
		s += fmt.Sprintf(", %d sets", *ex.Sets)
	}
	return s
}

func formatDistance(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
