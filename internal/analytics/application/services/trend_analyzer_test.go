package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogenrwotdaniel/focusflow/internal/analytics/domain"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
)

// days builds one DailyProductivity per value, ending on today, where each
// value is that day's focus minutes.
func days(today time.Time, minutes ...int) []domain.DailyProductivity {
	out := make([]domain.DailyProductivity, len(minutes))
	for i, m := range minutes {
		completed := 0
		if m > 0 {
			completed = 1
		}
		out[i] = domain.DailyProductivity{
			Date:              domain.DayStart(today, time.UTC).AddDate(0, 0, i-len(minutes)+1),
			FocusMinutes:      m,
			SessionsCompleted: completed,
			SessionsTotal:     1,
			CompletionRate:    float64(completed),
		}
	}
	return out
}

func newAnalyzer(now time.Time, goal int) *TrendAnalyzer {
	return NewTrendAnalyzer(fixedClock(now), TrendSettings{
		DailyGoalMinutes: goal,
		LookbackDays:     14,
		Location:         time.UTC,
	})
}

func TestNewTrendAnalyzer_Defaults(t *testing.T) {
	settings := NewTrendAnalyzer(nil, TrendSettings{}).Settings()
	defaults := prefDomain.Defaults()

	assert.Equal(t, defaults.DailyFocusGoalMinutes, settings.DailyGoalMinutes)
	assert.Equal(t, defaults.TrendsLookbackDays, settings.LookbackDays)
	assert.Equal(t, defaults.ScoreWeights, settings.Weights)
	assert.Equal(t, DefaultCompletionThreshold, settings.CompletionThreshold)
	assert.NotNil(t, settings.Location)
}

func TestTrendAnalyzer_AnalyzeTrends(t *testing.T) {
	now := at(10, 18)
	analyzer := newAnalyzer(now, 60)

	t.Run("fewer than two days gives no trends", func(t *testing.T) {
		assert.Empty(t, analyzer.AnalyzeTrends(nil))
		assert.Empty(t, analyzer.AnalyzeTrends(days(now, 30)))
	})

	t.Run("rising focus time is improving", func(t *testing.T) {
		trends := analyzer.AnalyzeTrends(days(now, 30, 30, 60, 60))
		require.Len(t, trends, 4)

		focusTime := trends[0]
		assert.Equal(t, domain.TrendFocusTime, focusTime.Type)
		assert.InDelta(t, 100.0, focusTime.PercentageChange, 1e-9)
		assert.True(t, focusTime.IsImproving)
		assert.Equal(t, 14, focusTime.PeriodDays)

		completion := trends[1]
		assert.Equal(t, domain.TrendCompletionRate, completion.Type)
		assert.Zero(t, completion.PercentageChange)
		assert.False(t, completion.IsImproving)
	})

	t.Run("falling focus time is declining", func(t *testing.T) {
		trends := analyzer.AnalyzeTrends(days(now, 80, 80, 40, 40))
		require.Len(t, trends, 4)
		assert.InDelta(t, -50.0, trends[0].PercentageChange, 1e-9)
		assert.False(t, trends[0].IsImproving)
		assert.Less(t, trends[3].PercentageChange, 0.0)
	})

	t.Run("days outside the lookback window are ignored", func(t *testing.T) {
		old := days(now.AddDate(0, 0, -30), 500, 500)
		recent := days(now, 30, 30)
		trends := analyzer.AnalyzeTrends(append(old, recent...))
		require.Len(t, trends, 4)
		assert.Zero(t, trends[0].PercentageChange)
	})
}

func TestTrendAnalyzer_DailyScore(t *testing.T) {
	analyzer := NewTrendAnalyzer(nil, TrendSettings{})

	full := domain.DailyProductivity{FocusMinutes: 120, SessionsCompleted: 4, SessionsTotal: 4, CompletionRate: 1}
	assert.InDelta(t, 100.0, analyzer.DailyScore(full), 1e-9)
	assert.Zero(t, analyzer.DailyScore(domain.DailyProductivity{}))
}

func TestTrendAnalyzer_DetectPatterns(t *testing.T) {
	analyzer := newAnalyzer(at(13, 12), 60)

	t.Run("no history", func(t *testing.T) {
		assert.Empty(t, analyzer.DetectPatterns(nil))
	})

	t.Run("most and least productive weekday", func(t *testing.T) {
		daily := []domain.DailyProductivity{
			{Date: base, FocusMinutes: 100},                  // Monday
			{Date: base.AddDate(0, 0, 7), FocusMinutes: 100}, // Monday
			{Date: base.AddDate(0, 0, 2), FocusMinutes: 20},  // Wednesday
		}
		patterns := analyzer.DetectPatterns(daily)
		require.Len(t, patterns, 2)

		assert.Equal(t, domain.PatternMostProductiveDay, patterns[0].Type)
		assert.Equal(t, time.Monday, patterns[0].Day)
		assert.InDelta(t, 100.0, patterns[0].Value, 1e-9)
		assert.Equal(t, -1, patterns[0].Hour)

		assert.Equal(t, domain.PatternLeastProductiveDay, patterns[1].Type)
		assert.Equal(t, time.Wednesday, patterns[1].Day)
	})

	t.Run("a single weekday has no least productive day", func(t *testing.T) {
		patterns := analyzer.DetectPatterns([]domain.DailyProductivity{{Date: base, FocusMinutes: 50}})
		require.Len(t, patterns, 1)
		assert.Equal(t, domain.PatternMostProductiveDay, patterns[0].Type)
	})
}

func TestConfidence(t *testing.T) {
	assert.Zero(t, Confidence(nil))
	assert.InDelta(t, 0.5, Confidence([]float64{42}), 1e-9)
	assert.InDelta(t, 0.6, Confidence([]float64{60, 60, 60}), 1e-9)
	assert.InDelta(t, 1.0, Confidence([]float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5}), 1e-9)

	noisy := Confidence([]float64{1, 100, 1, 100})
	assert.GreaterOrEqual(t, noisy, 0.0)
	assert.LessOrEqual(t, noisy, 1.0)
	assert.Less(t, noisy, Confidence([]float64{50, 50, 50, 50}))
}

func TestTrendAnalyzer_GoalStreak(t *testing.T) {
	now := at(20, 21)

	t.Run("current run stops at the first unqualified day", func(t *testing.T) {
		streak := newAnalyzer(now, 60).GoalStreak(days(now, 30, 0, 0, 40, 45, 50, 55, 60, 65, 70, 75))

		assert.Equal(t, domain.StreakDailyGoalMet, streak.Type)
		assert.Equal(t, 4, streak.CurrentDays)
		assert.Equal(t, 4, streak.BestDays)
		assert.True(t, streak.IsActive)
	})

	t.Run("ten days in a row after an older miss", func(t *testing.T) {
		daily := append(days(now.AddDate(0, 0, -20), 30), days(now, 60, 60, 60, 60, 60, 60, 60, 60, 60, 60)...)
		streak := newAnalyzer(now, 60).GoalStreak(daily)

		assert.Equal(t, 10, streak.CurrentDays)
		assert.Equal(t, 10, streak.BestDays)
		assert.True(t, streak.IsActive)
	})

	t.Run("a gap in the calendar breaks the best run", func(t *testing.T) {
		daily := []domain.DailyProductivity{
			{Date: base, FocusMinutes: 90},
			{Date: base.AddDate(0, 0, 1), FocusMinutes: 90},
			{Date: base.AddDate(0, 0, 3), FocusMinutes: 90},
		}
		streak := newAnalyzer(now, 60).GoalStreak(daily)

		assert.Equal(t, 2, streak.BestDays)
		assert.Zero(t, streak.CurrentDays)
		assert.False(t, streak.IsActive)
	})

	t.Run("a streak ending yesterday is not current", func(t *testing.T) {
		streak := newAnalyzer(now, 60).GoalStreak(days(now.AddDate(0, 0, -1), 90, 90, 90))

		assert.Zero(t, streak.CurrentDays)
		assert.Equal(t, 3, streak.BestDays)
		assert.False(t, streak.IsActive)
	})

	t.Run("empty history", func(t *testing.T) {
		streak := newAnalyzer(now, 60).GoalStreak(nil)
		assert.Equal(t, domain.ProductivityStreak{Type: domain.StreakDailyGoalMet}, streak)
	})
}

func TestTrendAnalyzer_DetectStreaks(t *testing.T) {
	now := at(20, 21)
	streaks := newAnalyzer(now, 200).DetectStreaks(days(now, 0, 30, 30, 30))
	require.Len(t, streaks, 3)

	assert.Equal(t, domain.StreakDailyGoalMet, streaks[0].Type)
	assert.Zero(t, streaks[0].BestDays)

	assert.Equal(t, domain.StreakCompletionRateAbove, streaks[1].Type)
	assert.Equal(t, 3, streaks[1].CurrentDays)

	assert.Equal(t, domain.StreakConsecutiveFocusDays, streaks[2].Type)
	assert.Equal(t, 3, streaks[2].CurrentDays)
	assert.Equal(t, 3, streaks[2].BestDays)
	assert.True(t, streaks[2].IsActive)
}
