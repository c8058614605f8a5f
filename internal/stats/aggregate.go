// Package stats turns a week of workout entries into summary figures and
// the directives handed to the insight writer.
package stats

import (
	"time"

	"github.com/samber/lo"

	"arlo/internal/workout"
)

type Consistency string

const (
	ConsistencyHigh     Consistency = "high"
	ConsistencyModerate Consistency = "moderate"
	ConsistencyLow      Consistency = "low"
)

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
	TrendUnknown    Trend = "unknown"
)

// Balance is the cardio/strength split in whole percent.
type Balance struct {
	CardioPercent   int `json:"cardioPercent"`
	StrengthPercent int `json:"strengthPercent"`
}

// WeeklyStats summarises one week. When NoDataThisWeek is set no other
// field is populated.
type WeeklyStats struct {
	NoDataThisWeek       bool        `json:"noDataThisWeek,omitempty"`
	TotalWorkouts        int         `json:"totalWorkouts,omitempty"`
	CardioCount          int         `json:"cardioCount,omitempty"`
	StrengthCount        int         `json:"strengthCount,omitempty"`
	TotalDistance        float64     `json:"totalDistance,omitempty"`
	TotalDurationMinutes int         `json:"totalDurationMinutes,omitempty"`
	ActiveDayCount       int         `json:"activeDayCount,omitempty"`
	Balance              *Balance    `json:"trainingBalance,omitempty"`
	Consistency          Consistency `json:"consistency,omitempty"`
	VolumeTrend          Trend       `json:"volumeTrend,omitempty"`
	VolumeChangePercent  *int        `json:"volumeChangePercent,omitempty"` // nil unless comparable
}

// TrainingBalance returns the split, or zero percentages when unset.
func (s WeeklyStats) TrainingBalance() Balance {
	if s.Balance == nil {
		return Balance{}
	}
	return *s.Balance
}

// NoData is the empty-week sentinel.
func NoData() WeeklyStats {
	return WeeklyStats{NoDataThisWeek: true}
}

// Aggregate computes the stats for workouts. priorWeekTotal is last week's
// workout count when known.
func Aggregate(workouts []workout.LogEntry, priorWeekTotal *int) WeeklyStats {
	if len(workouts) == 0 {
		return NoData()
	}

	s := WeeklyStats{TotalWorkouts: len(workouts)}

	s.CardioCount = lo.CountBy(workouts, func(w workout.LogEntry) bool { return w.Category == workout.Cardio })
	s.StrengthCount = lo.CountBy(workouts, func(w workout.LogEntry) bool { return w.Category == workout.Strength })

	s.TotalDistance = lo.SumBy(workouts, func(w workout.LogEntry) float64 {
		if w.Cardio == nil || w.Cardio.Distance == nil {
			return 0
		}
		return *w.Cardio.Distance
	})
	s.TotalDurationMinutes = lo.SumBy(workouts, func(w workout.LogEntry) int {
		if w.Cardio == nil || w.Cardio.DurationMinutes == nil {
			return 0
		}
		return *w.Cardio.DurationMinutes
	})

	s.ActiveDayCount = len(lo.Uniq(lo.Map(workouts, func(w workout.LogEntry, _ int) string { return w.Day() })))

	cardio := roundPercent(s.CardioCount, s.TotalWorkouts)
	// Derived rather than rounded on its own so the pair always sums to 100;
	// on a .5 tie strength can land one below round(100*strength/total).
	s.Balance = &Balance{CardioPercent: cardio, StrengthPercent: 100 - cardio}

	switch {
	case s.ActiveDayCount >= 4:
		s.Consistency = ConsistencyHigh
	case s.ActiveDayCount >= 2:
		s.Consistency = ConsistencyModerate
	default:
		s.Consistency = ConsistencyLow
	}

	s.VolumeTrend, s.VolumeChangePercent = trend(s.TotalWorkouts, priorWeekTotal)
	return s
}

func trend(current int, prior *int) (Trend, *int) {
	if prior == nil || *prior <= 0 {
		return TrendUnknown, nil
	}

	p := *prior
	var change int
	var t Trend
	switch {
	case current > p:
		t, change = TrendIncreasing, roundPercent(current-p, p)
	case current < p:
		t, change = TrendDecreasing, roundPercent(p-current, p)
	default:
		t = TrendStable
	}
	return t, &change
}

// roundPercent is round(100*n/d) with halves rounded up, for n, d >= 0.
func roundPercent(n, d int) int {
	return (200*n + d) / (2 * d)
}

// WeekStart returns midnight UTC of the Monday starting t's week.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
}
