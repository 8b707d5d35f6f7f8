package domain

import "time"

// TrendType identifies the metric a trend follows.
type TrendType string

const (
	TrendFocusTime           TrendType = "focus_time"
	TrendCompletionRate      TrendType = "completion_rate"
	TrendSessionsCompleted   TrendType = "sessions_completed"
	TrendOverallProductivity TrendType = "overall_productivity"
)

// ProductivityTrend compares the newer half of a period with the older half.
type ProductivityTrend struct {
	Type             TrendType
	MetricName       string
	PercentageChange float64
	PeriodDays       int
	IsImproving      bool
}

// StreakType identifies what qualifies a day for a streak.
type StreakType string

const (
	StreakDailyGoalMet         StreakType = "daily_goal_met"
	StreakCompletionRateAbove  StreakType = "completion_rate_above_threshold"
	StreakConsecutiveFocusDays StreakType = "consecutive_focus_days"
)

// ProductivityStreak counts consecutive qualifying days.
type ProductivityStreak struct {
	Type        StreakType
	CurrentDays int // run ending today
	BestDays    int // longest run in the history
	IsActive    bool
}

// PatternType identifies a detected productivity pattern.
type PatternType string

const (
	PatternMostProductiveDay  PatternType = "most_productive_day"
	PatternLeastProductiveDay PatternType = "least_productive_day"
	PatternMostProductiveTime PatternType = "most_productive_time"
	PatternLongestSessions    PatternType = "longest_sessions"
)

// ProductivityPattern is a recurring tendency with a confidence in [0, 1].
// Day is set for the day patterns and Hour for the time pattern.
type ProductivityPattern struct {
	Type       PatternType
	Day        time.Weekday
	Hour       int
	MetricName string
	Value      float64
	Confidence float64
}
