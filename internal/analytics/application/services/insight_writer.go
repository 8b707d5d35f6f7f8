package services

import (
	"fmt"
	"math"
	"time"

	"github.com/ogenrwotdaniel/focusflow/internal/analytics/domain"
	focusDomain "github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
)

// Patterns below this confidence are not worth mentioning.
const minPatternConfidence = 0.5

// InsightWriter turns trends, patterns and streaks into sentences.
type InsightWriter struct {
	clock       focusDomain.Clock
	loc         *time.Location
	goalMinutes int
}

// NewInsightWriter creates a writer that refers to goalMinutes as the daily
// focus goal.
func NewInsightWriter(clock focusDomain.Clock, loc *time.Location, goalMinutes int) *InsightWriter {
	if clock == nil {
		clock = focusDomain.SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &InsightWriter{clock: clock, loc: loc, goalMinutes: goalMinutes}
}

// Write returns one sentence per trend, one per confident pattern and one
// for the daily-goal streak.
func (w *InsightWriter) Write(trends []domain.ProductivityTrend, patterns []domain.ProductivityPattern, streak domain.ProductivityStreak) []string {
	var out []string
	for _, t := range trends {
		out = append(out, w.Trend(t))
	}
	for _, p := range patterns {
		if text := w.Pattern(p); text != "" {
			out = append(out, text)
		}
	}
	return append(out, w.Streak(streak))
}

// Trend describes one trend. Changes beyond 10% and 20% get stronger wording.
func (w *InsightWriter) Trend(t domain.ProductivityTrend) string {
	today := w.clock.Now().In(w.loc)
	since := today.AddDate(0, 0, -t.PeriodDays).Format("Jan 2")
	until := today.Format("Jan 2")
	change := fmt.Sprintf("%.1f", math.Abs(t.PercentageChange))

	direction := "decreased"
	if t.IsImproving {
		direction = "increased"
	}

	var evaluation string
	switch {
	case t.IsImproving && t.PercentageChange > 20:
		evaluation = "significantly increased! Great job!"
	case t.IsImproving && t.PercentageChange > 10:
		evaluation = "shown good improvement. Keep it up!"
	case t.IsImproving:
		evaluation = "slightly improved. You're on the right track."
	case t.PercentageChange < -20:
		evaluation = "significantly decreased. Consider what might be affecting your focus."
	case t.PercentageChange < -10:
		evaluation = "been trending down. Try to identify what changed."
	default:
		evaluation = "slightly decreased. This is a minor change and may not be significant."
	}

	switch t.Type {
	case domain.TrendFocusTime:
		return fmt.Sprintf("Since %s, your daily focus time has %s Your total focus minutes have %s by %s%% through %s.",
			since, evaluation, direction, change, until)
	case domain.TrendCompletionRate:
		return fmt.Sprintf("Your session completion rate has %s The percentage of completed sessions has %s by %s%% since %s.",
			evaluation, direction, change, since)
	case domain.TrendSessionsCompleted:
		return fmt.Sprintf("The number of focus sessions you complete has %s Your daily sessions have %s by %s%% compared to earlier this month.",
			evaluation, direction, change)
	default:
		return fmt.Sprintf("Your overall productivity score has %s Overall productivity has %s by %s%% in the past %d days.",
			evaluation, direction, change, t.PeriodDays)
	}
}

// Pattern describes a pattern, or returns "" when confidence is below 0.5.
func (w *InsightWriter) Pattern(p domain.ProductivityPattern) string {
	if p.Confidence < minPatternConfidence {
		return ""
	}
	day := p.Day.String()
	switch p.Type {
	case domain.PatternMostProductiveDay:
		if p.Confidence > 0.7 {
			return fmt.Sprintf("%s is definitely your most productive day! You average %d minutes of focus time on %ss. Consider scheduling your most important work on this day.",
				day, int(p.Value), day)
		}
		return fmt.Sprintf("You seem to be most productive on %ss with an average of %d focus minutes. This pattern is beginning to emerge in your data.",
			day, int(p.Value))
	case domain.PatternLeastProductiveDay:
		return fmt.Sprintf("Your focus tends to dip on %ss. Consider planning lighter workloads or more breaks on this day.", day)
	case domain.PatternMostProductiveTime:
		return fmt.Sprintf("You appear to be most productive during the %s. Consider scheduling your most challenging tasks during this time.",
			partOfDay(p.Hour))
	case domain.PatternLongestSessions:
		return fmt.Sprintf("Your longest focus sessions typically last around %d minutes. This may be your optimal session length before needing a break.",
			int(p.Value))
	default:
		return ""
	}
}

// Streak describes a streak in bands of 3, 7, 14 and 30 days.
func (w *InsightWriter) Streak(s domain.ProductivityStreak) string {
	goal := w.goalMinutes
	switch {
	case s.CurrentDays > 0 && s.IsActive:
		switch {
		case s.CurrentDays >= 30:
			return fmt.Sprintf("Incredible focus discipline! You've met your daily goal of %d focus minutes for %d days straight. This puts you in the top tier of focused individuals.", goal, s.CurrentDays)
		case s.CurrentDays >= 14:
			return fmt.Sprintf("Outstanding streak! You've maintained your daily focus goal of %d minutes for %d consecutive days. Your consistency is building a powerful habit.", goal, s.CurrentDays)
		case s.CurrentDays >= 7:
			return fmt.Sprintf("Great work! You've hit your daily focus goal of %d minutes for %d days in a row. You're building excellent momentum.", goal, s.CurrentDays)
		case s.CurrentDays >= 3:
			return fmt.Sprintf("You're on a %d-day streak of meeting your focus goal of %d minutes. Keep it going!", s.CurrentDays, goal)
		default:
			return fmt.Sprintf("You've met your daily focus goal of %d minutes. Now build on this success and extend your streak!", goal)
		}
	case s.BestDays > 7:
		return fmt.Sprintf("Your best focus streak was %d consecutive days meeting your goal of %d minutes. Can you beat that record?", s.BestDays, goal)
	case s.BestDays > 0:
		return fmt.Sprintf("Your longest streak so far is %d days. Today is a great day to start a new streak!", s.BestDays)
	default:
		return fmt.Sprintf("Set a goal of %d focused minutes each day and build your first streak!", goal)
	}
}

func partOfDay(hour int) string {
	switch {
	case hour >= 5 && hour <= 11:
		return "morning"
	case hour >= 12 && hour <= 16:
		return "afternoon"
	case hour >= 17 && hour <= 21:
		return "evening"
	case hour < 0:
		return "unknown time"
	default:
		return "late night"
	}
}
