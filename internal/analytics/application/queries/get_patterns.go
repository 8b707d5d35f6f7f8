package queries

import (
	"context"
	"time"

	"github.com/ogenrwotdaniel/focusflow/internal/analytics/application/services"
	analyticsDomain "github.com/ogenrwotdaniel/focusflow/internal/analytics/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
)

// GetPatternsQuery represents the query for the user's focus pattern.
type GetPatternsQuery struct {
	Days int // history to analyze; 0 means the configured history
}

// PatternsResult contains the focus pattern and its explanation.
type PatternsResult struct {
	Pattern  analyticsDomain.FocusPattern
	Insights []analyticsDomain.Insight
	Sessions int // closed focus sessions analyzed
}

// GetPatternsHandler handles pattern queries.
type GetPatternsHandler struct {
	sessions    domain.SessionStore
	analyzer    *services.FocusPatternAnalyzer
	engine      *services.RecommendationEngine
	clock       domain.Clock
	loc         *time.Location
	historyDays int
}

// NewGetPatternsHandler creates a new get patterns handler.
func NewGetPatternsHandler(
	sessions domain.SessionStore,
	analyzer *services.FocusPatternAnalyzer,
	engine *services.RecommendationEngine,
	clock domain.Clock,
	loc *time.Location,
	historyDays int,
) *GetPatternsHandler {
	if historyDays <= 0 {
		historyDays = services.DefaultHistoryDays
	}
	return &GetPatternsHandler{
		sessions:    sessions,
		analyzer:    analyzer,
		engine:      engine,
		clock:       orSystemClock(clock),
		loc:         orLocal(loc),
		historyDays: historyDays,
	}
}

// Handle executes the get patterns query.
func (h *GetPatternsHandler) Handle(ctx context.Context, query GetPatternsQuery) (*PatternsResult, error) {
	days := query.Days
	if days <= 0 {
		days = h.historyDays
	}
	sessions, err := history(ctx, h.sessions, h.clock, h.loc, days)
	if err != nil {
		return nil, err
	}
	pattern := h.analyzer.Analyze(sessions)
	return &PatternsResult{
		Pattern:  pattern,
		Insights: h.engine.Insights(pattern),
		Sessions: len(sessions),
	}, nil
}
