package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/ogenrwotdaniel/focusflow/internal/analytics/domain"
	focusDomain "github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	"github.com/ogenrwotdaniel/focusflow/pkg/observability"
)

// DefaultHistoryDays bounds the history read for streaks and distributions.
const DefaultHistoryDays = 365

const (
	topOptimalHours = 3
	topInsights     = 3
	baseScore       = 50
	focusScoreCap   = 120
)

// ProductivityInsights assembles the dashboard from session history.
type ProductivityInsights struct {
	sessions    focusDomain.SessionStore
	analyzer    *FocusPatternAnalyzer
	engine      *RecommendationEngine
	clock       focusDomain.Clock
	loc         *time.Location
	historyDays int
	logger      *slog.Logger
	metrics     observability.Metrics
}

// NewProductivityInsights creates the dashboard builder. historyDays <= 0
// means DefaultHistoryDays.
func NewProductivityInsights(
	sessions focusDomain.SessionStore,
	analyzer *FocusPatternAnalyzer,
	engine *RecommendationEngine,
	clock focusDomain.Clock,
	loc *time.Location,
	historyDays int,
	logger *slog.Logger,
	metrics observability.Metrics,
) *ProductivityInsights {
	if clock == nil {
		clock = focusDomain.SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	if analyzer == nil {
		analyzer = NewFocusPatternAnalyzer(loc)
	}
	if engine == nil {
		engine = NewRecommendationEngine()
	}
	if historyDays <= 0 {
		historyDays = DefaultHistoryDays
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &ProductivityInsights{
		sessions:    sessions,
		analyzer:    analyzer,
		engine:      engine,
		clock:       clock,
		loc:         loc,
		historyDays: historyDays,
		logger:      observability.OrDefault(logger).With("component", "productivity_insights"),
		metrics:     metrics,
	}
}

// Dashboard builds the overview for today, this week and this month. When
// the store fails the returned dashboard carries the error text alongside
// the error itself.
func (p *ProductivityInsights) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	timer := observability.StartTimer("dashboard").
		WithLogger(p.logger).
		WithMetrics(p.metrics).
		WithMetric(observability.MetricAnalyticsDuration)

	dashboard, err := p.build(ctx)
	timer.StopWithError(err)
	if err != nil {
		return &domain.Dashboard{
			GeneratedAt:  p.clock.Now(),
			Distribution: domain.EmptyDistribution(),
			Error:        err.Error(),
		}, fmt.Errorf("building dashboard: %w", err)
	}
	return dashboard, nil
}

func (p *ProductivityInsights) build(ctx context.Context) (*domain.Dashboard, error) {
	now := p.clock.Now().In(p.loc)
	today := domain.DayStart(now, p.loc)
	weekStart := startOfWeek(today)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, p.loc)

	daily, err := p.periodMetrics(ctx, "Today", today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	weekly, err := p.periodMetrics(ctx, "This Week", weekStart, weekStart.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	monthly, err := p.periodMetrics(ctx, "This Month", monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	history, err := p.sessions.QueryCompleted(ctx, focusDomain.SessionFilter{
		Kinds:            []focusDomain.SessionKind{focusDomain.SessionKindFocus},
		From:             today.AddDate(0, 0, -p.historyDays),
		IncludeAbandoned: true,
	})
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	insights := p.engine.Insights(p.analyzer.Analyze(history))
	if len(insights) > topInsights {
		insights = insights[:topInsights]
	}

	return &domain.Dashboard{
		GeneratedAt:       now,
		Daily:             daily,
		Weekly:            weekly,
		Monthly:           monthly,
		CurrentStreak:     p.currentStreak(history, today),
		ProductivityScore: ProductivityScore(daily, weekly),
		Distribution:      p.distribution(history),
		OptimalHours:      p.optimalHours(history),
		TopInsights:       insights,
	}, nil
}

func (p *ProductivityInsights) periodMetrics(ctx context.Context, label string, from, to time.Time) (domain.ProductivityMetrics, error) {
	all, err := p.sessions.QueryByDateRange(ctx, from, to)
	if err != nil {
		return domain.ProductivityMetrics{}, fmt.Errorf("reading %s: %w", label, err)
	}
	return p.summarize(label, focusOnly(all)), nil
}

func (p *ProductivityInsights) summarize(label string, sessions []*focusDomain.Session) domain.ProductivityMetrics {
	m := domain.ProductivityMetrics{
		Label:                label,
		TotalSessions:        len(sessions),
		MostProductiveTime:   domain.NotEnoughData,
		LeastInterruptedTime: domain.NotEnoughData,
	}
	if len(sessions) == 0 {
		return m
	}

	var ratingSum float64
	var ratedCount int
	for _, s := range sessions {
		if s.Completed {
			m.CompletedSessions++
		}
		m.FocusMinutes += s.FocusMinutes()
		if s.HasRating() {
			ratingSum += s.ProductivityRating
			ratedCount++
		}
	}
	m.CompletionRate = float64(m.CompletedSessions) / float64(m.TotalSessions) * 100
	m.AverageSessionMinutes = m.FocusMinutes / m.TotalSessions
	if ratedCount > 0 {
		m.AverageRating = ratingSum / float64(ratedCount)
	}

	if hour, ok := argmax(p.hourlyScores(sessions)); ok {
		m.MostProductiveTime = domain.FormatHour(hour)
	}
	interruptions := meanBy(sessions, p.hour, func(s *focusDomain.Session) float64 {
		return float64(s.Interruptions)
	})
	if hour, ok := argmin(interruptions); ok {
		m.LeastInterruptedTime = domain.FormatHour(hour)
	}
	return m
}

// hourlyScores is completion rate times mean rating per start hour.
func (p *ProductivityInsights) hourlyScores(sessions []*focusDomain.Session) map[int]float64 {
	completion := meanBy(sessions, p.hour, func(s *focusDomain.Session) float64 {
		if s.Completed {
			return 1
		}
		return 0
	})
	ratings := meanBy(sessions, p.hour, rating)
	scores := make(map[int]float64, len(completion))
	for hour, cr := range completion {
		scores[hour] = cr * ratings[hour]
	}
	return scores
}

func (p *ProductivityInsights) currentStreak(history []*focusDomain.Session, today time.Time) int {
	days := make(map[time.Time]bool)
	for _, s := range history {
		if s.Completed {
			days[domain.DayStart(s.StartTime, p.loc)] = true
		}
	}
	streak := 0
	for day := today; days[day]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

func (p *ProductivityInsights) distribution(history []*focusDomain.Session) []domain.TimeBucket {
	buckets := domain.EmptyDistribution()
	for _, s := range history {
		if s.Completed {
			buckets[domain.BucketIndex(p.hour(s))].Count++
		}
	}
	return buckets
}

func (p *ProductivityInsights) optimalHours(history []*focusDomain.Session) []domain.OptimalHour {
	scores := p.hourlyScores(focusOnly(history))
	hours := make([]domain.OptimalHour, 0, len(scores))
	for hour, score := range scores {
		hours = append(hours, domain.OptimalHour{Hour: hour, Label: domain.FormatHour(hour), Score: score})
	}
	sort.Slice(hours, func(i, j int) bool {
		if hours[i].Score != hours[j].Score {
			return hours[i].Score > hours[j].Score
		}
		return hours[i].Hour < hours[j].Hour
	})
	if len(hours) > topOptimalHours {
		hours = hours[:topOptimalHours]
	}
	return hours
}

func (p *ProductivityInsights) hour(s *focusDomain.Session) int {
	return s.StartTime.In(p.loc).Hour()
}

// ProductivityScore starts at 50 and adds up to 15 points for today's
// completion rate, 10 for this week's, 15 for today's rating and 10 for up
// to two hours of focus today. The result is clamped to 0..100.
func ProductivityScore(daily, weekly domain.ProductivityMetrics) int {
	score := baseScore +
		int(math.Round(daily.CompletionRate/100*15)) +
		int(math.Round(weekly.CompletionRate/100*10)) +
		int(math.Round(daily.AverageRating/10*15)) +
		int(math.Round(float64(min(daily.FocusMinutes, focusScoreCap))/focusScoreCap*10))
	return max(0, min(100, score))
}

// argmin returns the key with the smallest value; ties go to the smaller key.
func argmin(values map[int]float64) (int, bool) {
	negated := make(map[int]float64, len(values))
	for k, v := range values {
		negated[k] = -v
	}
	return argmax(negated)
}

// startOfWeek returns the Monday of the week containing day.
func startOfWeek(day time.Time) time.Time {
	return day.AddDate(0, 0, 1-isoWeekday(day.Weekday()))
}
