package stats

import (
	"fmt"
	"strings"
)

// directive is one row of the prompt table. Rows run in order and each
// contributes at most one line.
type directive struct {
	name  string
	build func(s WeeklyStats, goal string) (string, bool)
}

var directives = []directive{
	{name: "volume_trend", build: volumeDirective},
	{name: "balance", build: balanceDirective},
	{name: "consistency", build: consistencyDirective},
	{name: "goal", build: goalDirective},
}

// BuildPrompts returns the ordered directives for a week. An empty goal is
// treated as absent. The no-data sentinel yields no directives.
func BuildPrompts(s WeeklyStats, goal string) []string {
	if s.NoDataThisWeek {
		return nil
	}

	var prompts []string
	for _, d := range directives {
		if line, ok := d.build(s, goal); ok {
			prompts = append(prompts, line)
		}
	}
	return prompts
}

func volumeDirective(s WeeklyStats, _ string) (string, bool) {
	if s.VolumeChangePercent == nil {
		return "", false
	}
	switch s.VolumeTrend {
	case TrendIncreasing:
		return fmt.Sprintf("Volume increased %d%% from last week - acknowledge progress", *s.VolumeChangePercent), true
	case TrendDecreasing:
		return fmt.Sprintf("Volume decreased %d%% from last week - gentle reminder about consistency", *s.VolumeChangePercent), true
	}
	return "", false
}

func balanceDirective(s WeeklyStats, _ string) (string, bool) {
	b := s.TrainingBalance()
	switch {
	case b.CardioPercent > 80:
		return fmt.Sprintf("Training is %d%% cardio - suggest adding strength work", b.CardioPercent), true
	case b.StrengthPercent > 80:
		return fmt.Sprintf("Training is %d%% strength - suggest adding cardio for recovery", b.StrengthPercent), true
	case s.CardioCount > 0 && s.StrengthCount > 0:
		return fmt.Sprintf("Good balance: %d cardio + %d strength sessions", s.CardioCount, s.StrengthCount), true
	}
	return "", false
}

func consistencyDirective(s WeeklyStats, _ string) (string, bool) {
	switch {
	case s.ActiveDayCount >= 5:
		return fmt.Sprintf("Trained %d days - excellent consistency", s.ActiveDayCount), true
	case s.ActiveDayCount <= 2:
		return fmt.Sprintf("Only %d training days - encourage more consistency", s.ActiveDayCount), true
	}
	return "", false
}

func goalDirective(_ WeeklyStats, goal string) (string, bool) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return "", false
	}
	return fmt.Sprintf("User goal: %s - relate insights to their goal", goal), true
}
