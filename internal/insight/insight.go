// Package insight writes the weekly summary text sent to a user.
package insight

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"arlo/internal/stats"
)

// SystemPrompt frames the weekly summary for the completion model.
const SystemPrompt = `You are Arlo, an AI performance coach. Generate a brief, personalized weekly progress summary. Be:
- Encouraging and supportive
- Specific about their data
- Science-based but conversational
- 3-4 sentences max
- End with one actionable tip for next week

Tone: Like a knowledgeable friend, not a corporate bot.`

// Completer produces prose from a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Profile is what the summary needs to know about a user.
type Profile struct {
	Name string
	Goal string
}

type Generator struct {
	completer Completer
	logger    *log.Logger
}

func NewGenerator(logger *log.Logger, completer Completer) *Generator {
	return &Generator{completer: completer, logger: logger.WithPrefix("insight")}
}

// Weekly returns the summary for one week. Completion failures fall back
// to a fixed template so a summary is always produced. A nil completer
// always uses the template.
func (g *Generator) Weekly(ctx context.Context, p Profile, s stats.WeeklyStats, prompts []string) string {
	if s.NoDataThisWeek {
		return NoData(p)
	}
	if g.completer == nil {
		return Fallback(s)
	}

	reply, err := g.completer.Complete(ctx, SystemPrompt, BuildContext(p, s, prompts))
	if err != nil {
		g.logger.Error("Error generating weekly insight", "user", p.Name, "error", err)
		return Fallback(s)
	}
	if reply == "" {
		g.logger.Warn("Empty weekly insight, using fallback", "user", p.Name)
		return Fallback(s)
	}
	return reply
}

// NoData is the nudge sent after a week without logs.
func NoData(p Profile) string {
	name := p.Name
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`Hey %s,

I noticed you didn't log any workouts this week. No judgment - life happens!

Remember: one workout is infinitely better than zero. Even 15 minutes counts.

What's one small thing you can do tomorrow to get back on track?`, name)
}

// BuildContext renders the user message handed to the completion model.
func BuildContext(p Profile, s stats.WeeklyStats, prompts []string) string {
	name := p.Name
	if name == "" {
		name = "User"
	}
	goal := p.Goal
	if goal == "" {
		goal = "General fitness"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User: %s\nGoal: %s\n\n", name, goal)
	b.WriteString("Week Summary:\n")
	fmt.Fprintf(&b, "- Total workouts: %d\n", s.TotalWorkouts)
	fmt.Fprintf(&b, "- Cardio sessions: %d\n", s.CardioCount)
	fmt.Fprintf(&b, "- Strength sessions: %d\n", s.StrengthCount)
	fmt.Fprintf(&b, "- Days active: %d/7\n", s.ActiveDayCount)
	if s.TotalDistance > 0 {
		fmt.Fprintf(&b, "- Total distance: %skm\n", strconv.FormatFloat(s.TotalDistance, 'f', -1, 64))
	}
	if s.VolumeChangePercent != nil {
		fmt.Fprintf(&b, "- Volume trend: %s (%d%%)\n", s.VolumeTrend, *s.VolumeChangePercent)
	}

	if len(prompts) > 0 {
		b.WriteString("\nKey points to address:\n")
		for _, p := range prompts {
			b.WriteString("- " + p + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// Fallback is a deterministic summary used when completion fails.
func Fallback(s stats.WeeklyStats) string {
	momentum := "Keep that consistency going! 💪"
	if s.VolumeTrend == stats.TrendIncreasing {
		momentum = "Your volume is trending up - nice progress! 📈"
	}

	focus := "Keep the balance going"
	b := s.TrainingBalance()
	switch {
	case b.CardioPercent > 80:
		focus = "Add 1-2 strength sessions"
	case b.StrengthPercent > 80:
		focus = "Mix in some cardio"
	}

	return fmt.Sprintf("Great week! You completed %d workouts across %d days. %s\n\nFocus for next week: %s",
		s.TotalWorkouts, s.ActiveDayCount, momentum, focus)
}
