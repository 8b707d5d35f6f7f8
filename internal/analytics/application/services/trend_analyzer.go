package services

import (
	"math"
	"sort"
	"time"

	"github.com/ogenrwotdaniel/focusflow/internal/analytics/domain"
	focusDomain "github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
)

// Normalization anchors of the overall productivity score: four sessions
// and two hours of focus count as a full day.
const (
	sessionsAnchor = 4.0
	minutesAnchor  = 120.0
)

// DefaultCompletionThreshold qualifies a day for the completion-rate streak.
const DefaultCompletionThreshold = 0.8

// TrendSettings configures the TrendAnalyzer.
type TrendSettings struct {
	DailyGoalMinutes    int
	LookbackDays        int
	Weights             prefDomain.ScoreWeights
	CompletionThreshold float64
	Location            *time.Location
}

// TrendSettingsFrom builds settings from user preferences.
func TrendSettingsFrom(p prefDomain.Preferences, loc *time.Location) TrendSettings {
	return TrendSettings{
		DailyGoalMinutes:    p.DailyFocusGoalMinutes,
		LookbackDays:        p.TrendsLookbackDays,
		Weights:             p.ScoreWeights,
		CompletionThreshold: DefaultCompletionThreshold,
		Location:            loc,
	}
}

// TrendAnalyzer detects trends, weekday patterns and streaks in a sequence
// of DailyProductivity.
type TrendAnalyzer struct {
	clock    focusDomain.Clock
	settings TrendSettings
}

// NewTrendAnalyzer creates an analyzer. Zero settings fall back to the
// preference defaults.
func NewTrendAnalyzer(clock focusDomain.Clock, settings TrendSettings) *TrendAnalyzer {
	defaults := prefDomain.Defaults()
	if clock == nil {
		clock = focusDomain.SystemClock{}
	}
	if settings.DailyGoalMinutes <= 0 {
		settings.DailyGoalMinutes = defaults.DailyFocusGoalMinutes
	}
	if settings.LookbackDays <= 0 {
		settings.LookbackDays = defaults.TrendsLookbackDays
	}
	if settings.Weights == (prefDomain.ScoreWeights{}) {
		settings.Weights = defaults.ScoreWeights
	}
	if settings.CompletionThreshold <= 0 {
		settings.CompletionThreshold = DefaultCompletionThreshold
	}
	if settings.Location == nil {
		settings.Location = time.Local
	}
	return &TrendAnalyzer{clock: clock, settings: settings}
}

// Settings returns the effective settings.
func (a *TrendAnalyzer) Settings() TrendSettings {
	return a.settings
}

// AnalyzeTrends keeps the days inside the lookback window and compares
// their newer half with the older half. Fewer than two days give no trends.
func (a *TrendAnalyzer) AnalyzeTrends(daily []domain.DailyProductivity) []domain.ProductivityTrend {
	window := a.window(daily)
	if len(window) < 2 {
		return nil
	}
	return []domain.ProductivityTrend{
		a.CalculateFocusTimeTrend(window),
		a.CalculateCompletionRateTrend(window),
		a.CalculateSessionsTrend(window),
		a.CalculateOverallTrend(window),
	}
}

// CalculateFocusTimeTrend compares mean focus minutes.
func (a *TrendAnalyzer) CalculateFocusTimeTrend(daily []domain.DailyProductivity) domain.ProductivityTrend {
	return a.trend(domain.TrendFocusTime, "focus minutes", daily, func(d domain.DailyProductivity) float64 {
		return float64(d.FocusMinutes)
	})
}

// CalculateCompletionRateTrend compares mean completion rates.
func (a *TrendAnalyzer) CalculateCompletionRateTrend(daily []domain.DailyProductivity) domain.ProductivityTrend {
	return a.trend(domain.TrendCompletionRate, "completion rate", daily, func(d domain.DailyProductivity) float64 {
		return d.CompletionRate
	})
}

// CalculateSessionsTrend compares mean completed sessions.
func (a *TrendAnalyzer) CalculateSessionsTrend(daily []domain.DailyProductivity) domain.ProductivityTrend {
	return a.trend(domain.TrendSessionsCompleted, "sessions completed", daily, func(d domain.DailyProductivity) float64 {
		return float64(d.SessionsCompleted)
	})
}

// CalculateOverallTrend compares the weighted daily productivity score.
func (a *TrendAnalyzer) CalculateOverallTrend(daily []domain.DailyProductivity) domain.ProductivityTrend {
	return a.trend(domain.TrendOverallProductivity, "overall productivity", daily, a.DailyScore)
}

// DailyScore is the weighted productivity score of one day, where four
// sessions and 120 focus minutes each count as 1.
func (a *TrendAnalyzer) DailyScore(d domain.DailyProductivity) float64 {
	w := a.settings.Weights
	return (d.CompletionRate*w.CompletionRate +
		float64(d.SessionsCompleted)/sessionsAnchor*w.SessionsCompleted +
		float64(d.FocusMinutes)/minutesAnchor*w.FocusDuration) * 100
}

func (a *TrendAnalyzer) trend(
	trendType domain.TrendType,
	metric string,
	daily []domain.DailyProductivity,
	value func(domain.DailyProductivity) float64,
) domain.ProductivityTrend {
	ordered := sortedByDate(daily)
	mid := len(ordered) / 2
	first := mean(values(ordered[:mid], value))
	second := mean(values(ordered[mid:], value))

	var change float64
	if first > 0 {
		change = (second - first) / first * 100
	}
	return domain.ProductivityTrend{
		Type:             trendType,
		MetricName:       metric,
		PercentageChange: change,
		PeriodDays:       a.settings.LookbackDays,
		IsImproving:      change > 0,
	}
}

// DetectPatterns finds the weekday with the most and, when at least two
// weekdays occur, the fewest mean focus minutes.
func (a *TrendAnalyzer) DetectPatterns(daily []domain.DailyProductivity) []domain.ProductivityPattern {
	if len(daily) == 0 {
		return nil
	}

	byDay := make(map[int][]float64)
	for _, d := range daily {
		day := isoWeekday(d.Date.Weekday())
		byDay[day] = append(byDay[day], float64(d.FocusMinutes))
	}
	days := make([]int, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Ints(days)

	most, least := days[0], days[0]
	for _, day := range days[1:] {
		m := mean(byDay[day])
		if m > mean(byDay[most]) {
			most = day
		}
		if m < mean(byDay[least]) {
			least = day
		}
	}

	patterns := []domain.ProductivityPattern{a.dayPattern(domain.PatternMostProductiveDay, most, byDay[most])}
	if len(days) > 1 {
		patterns = append(patterns, a.dayPattern(domain.PatternLeastProductiveDay, least, byDay[least]))
	}
	return patterns
}

func (a *TrendAnalyzer) dayPattern(patternType domain.PatternType, isoDay int, minutes []float64) domain.ProductivityPattern {
	return domain.ProductivityPattern{
		Type:       patternType,
		Day:        time.Weekday(isoDay % 7),
		Hour:       -1,
		MetricName: "focus minutes",
		Value:      mean(minutes),
		Confidence: Confidence(minutes),
	}
}

// Confidence scores a sample: up to 0.7 for size (0.1 per value) plus up to
// 0.3 for consistency (1 - coefficient of variation). Empty samples score 0
// and single values 0.5.
func Confidence(sample []float64) float64 {
	switch len(sample) {
	case 0:
		return 0
	case 1:
		return 0.5
	}

	m := mean(sample)
	var variance float64
	for _, v := range sample {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(sample))

	cv := 1.0
	if m > 0 {
		cv = math.Sqrt(variance) / m
	}
	sizeScore := math.Min(float64(len(sample))/10, 0.7)
	return sizeScore + 0.3*(1-math.Min(cv, 1))
}

// DetectStreaks returns the daily-goal, completion-rate and focus-day
// streaks, in that order.
func (a *TrendAnalyzer) DetectStreaks(daily []domain.DailyProductivity) []domain.ProductivityStreak {
	return []domain.ProductivityStreak{
		a.GoalStreak(daily),
		a.streak(domain.StreakCompletionRateAbove, daily, func(d domain.DailyProductivity) bool {
			return d.SessionsTotal > 0 && d.CompletionRate >= a.settings.CompletionThreshold
		}),
		a.streak(domain.StreakConsecutiveFocusDays, daily, func(d domain.DailyProductivity) bool {
			return d.SessionsCompleted > 0
		}),
	}
}

// GoalStreak counts days whose focus minutes met the daily goal.
func (a *TrendAnalyzer) GoalStreak(daily []domain.DailyProductivity) domain.ProductivityStreak {
	return a.streak(domain.StreakDailyGoalMet, daily, func(d domain.DailyProductivity) bool {
		return d.FocusMinutes >= a.settings.DailyGoalMinutes
	})
}

// streak computes the current run (backwards from today, stopping at the
// first gap or unqualified day) and the best run (consecutive calendar days
// that all qualify).
func (a *TrendAnalyzer) streak(streakType domain.StreakType, daily []domain.DailyProductivity, qualifies func(domain.DailyProductivity) bool) domain.ProductivityStreak {
	result := domain.ProductivityStreak{Type: streakType}
	if len(daily) == 0 {
		return result
	}
	loc := a.settings.Location
	ordered := sortedByDate(daily)

	expected := domain.DayStart(a.clock.Now(), loc)
	for i := len(ordered) - 1; i >= 0; i-- {
		day := domain.DayStart(ordered[i].Date, loc)
		if !day.Equal(expected) || !qualifies(ordered[i]) {
			break
		}
		result.CurrentDays++
		expected = expected.AddDate(0, 0, -1)
	}

	run := 0
	var previous time.Time
	for _, d := range ordered {
		day := domain.DayStart(d.Date, loc)
		switch {
		case !qualifies(d):
			run = 0
		case run > 0 && day.Equal(previous.AddDate(0, 0, 1)):
			run++
		default:
			run = 1
		}
		previous = day
		if run > result.BestDays {
			result.BestDays = run
		}
	}

	latest := domain.DayStart(ordered[len(ordered)-1].Date, loc)
	result.IsActive = result.CurrentDays > 0 && latest.Equal(domain.DayStart(a.clock.Now(), loc))
	return result
}

// window returns the days after today minus LookbackDays, oldest first.
func (a *TrendAnalyzer) window(daily []domain.DailyProductivity) []domain.DailyProductivity {
	cutoff := domain.DayStart(a.clock.Now(), a.settings.Location).AddDate(0, 0, -a.settings.LookbackDays)
	var out []domain.DailyProductivity
	for _, d := range sortedByDate(daily) {
		if d.Date.After(cutoff) {
			out = append(out, d)
		}
	}
	return out
}

func sortedByDate(daily []domain.DailyProductivity) []domain.DailyProductivity {
	out := append([]domain.DailyProductivity(nil), daily...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func values(daily []domain.DailyProductivity, value func(domain.DailyProductivity) float64) []float64 {
	out := make([]float64, len(daily))
	for i, d := range daily {
		out[i] = value(d)
	}
	return out
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
