package queries

import (
	"context"
	"time"

	"github.com/ogenrwotdaniel/focusflow/internal/analytics/application/services"
	analyticsDomain "github.com/ogenrwotdaniel/focusflow/internal/analytics/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
)

// GetTrendsQuery represents the query for productivity trends.
type GetTrendsQuery struct {
	Days int // lookback window; 0 uses the trends_lookback_days preference
}

// TrendsResult contains trend analysis data.
type TrendsResult struct {
	// Daily aggregates inside the lookback window, oldest first
	Daily []analyticsDomain.DailyProductivity

	Trends   []analyticsDomain.ProductivityTrend
	Patterns []analyticsDomain.ProductivityPattern
	Streaks  []analyticsDomain.ProductivityStreak

	// Sentences describing the above
	Insights []string
}

// GetTrendsHandler handles trends queries.
type GetTrendsHandler struct {
	sessions domain.SessionStore
	prefs    prefDomain.PreferenceStore
	clock    domain.Clock
	loc      *time.Location
}

// NewGetTrendsHandler creates a new get trends handler.
func NewGetTrendsHandler(sessions domain.SessionStore, prefs prefDomain.PreferenceStore, clock domain.Clock, loc *time.Location) *GetTrendsHandler {
	return &GetTrendsHandler{
		sessions: sessions,
		prefs:    prefs,
		clock:    orSystemClock(clock),
		loc:      orLocal(loc),
	}
}

// Handle executes the get trends query.
func (h *GetTrendsHandler) Handle(ctx context.Context, query GetTrendsQuery) (*TrendsResult, error) {
	prefs, err := preferences(ctx, h.prefs)
	if err != nil {
		return nil, err
	}
	settings := services.TrendSettingsFrom(prefs, h.loc)
	if query.Days > 0 {
		settings.LookbackDays = query.Days
	}
	analyzer := services.NewTrendAnalyzer(h.clock, settings)
	settings = analyzer.Settings()

	sessions, err := history(ctx, h.sessions, h.clock, h.loc, settings.LookbackDays)
	if err != nil {
		return nil, err
	}
	daily := analyticsDomain.BuildDailyProductivity(sessions, h.loc)

	result := &TrendsResult{
		Daily:    daily,
		Trends:   analyzer.AnalyzeTrends(daily),
		Patterns: analyzer.DetectPatterns(daily),
		Streaks:  analyzer.DetectStreaks(daily),
	}
	writer := services.NewInsightWriter(h.clock, h.loc, settings.DailyGoalMinutes)
	result.Insights = writer.Write(result.Trends, result.Patterns, analyzer.GoalStreak(daily))
	return result, nil
}
