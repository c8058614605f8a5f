package workout

import "time"

const dayLayout = "2006-01-02"

// CurrentStreak counts consecutive UTC calendar days with at least one
// entry, ending on today. A day without an entry today means no streak.
func CurrentStreak(dates []time.Time, today time.Time) int {
	days := make(map[string]bool, len(dates))
	for _, d := range dates {
		days[d.UTC().Format(dayLayout)] = true
	}

	streak := 0
	day := today.UTC()
	for days[day.Format(dayLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
