package queries

import (
	"context"
	"time"

	"github.com/ogenrwotdaniel/focusflow/internal/analytics/application/services"
	analyticsDomain "github.com/ogenrwotdaniel/focusflow/internal/analytics/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
)

// GetRecommendationsQuery represents the query for focus advice.
type GetRecommendationsQuery struct{}

// RecommendationsResult contains advice for right now.
type RecommendationsResult struct {
	Recommendation analyticsDomain.Recommendation
	NextFocusTime  analyticsDomain.NextFocusTime
	SessionSetup   analyticsDomain.SessionSetup
}

// GetRecommendationsHandler handles recommendation queries.
type GetRecommendationsHandler struct {
	sessions    domain.SessionStore
	prefs       prefDomain.PreferenceStore
	analyzer    *services.FocusPatternAnalyzer
	engine      *services.RecommendationEngine
	clock       domain.Clock
	loc         *time.Location
	historyDays int
}

// NewGetRecommendationsHandler creates a new get recommendations handler.
func NewGetRecommendationsHandler(
	sessions domain.SessionStore,
	prefs prefDomain.PreferenceStore,
	analyzer *services.FocusPatternAnalyzer,
	engine *services.RecommendationEngine,
	clock domain.Clock,
	loc *time.Location,
	historyDays int,
) *GetRecommendationsHandler {
	if historyDays <= 0 {
		historyDays = services.DefaultHistoryDays
	}
	return &GetRecommendationsHandler{
		sessions:    sessions,
		prefs:       prefs,
		analyzer:    analyzer,
		engine:      engine,
		clock:       orSystemClock(clock),
		loc:         orLocal(loc),
		historyDays: historyDays,
	}
}

// Handle executes the get recommendations query.
func (h *GetRecommendationsHandler) Handle(ctx context.Context, _ GetRecommendationsQuery) (*RecommendationsResult, error) {
	prefs, err := preferences(ctx, h.prefs)
	if err != nil {
		return nil, err
	}
	sessions, err := history(ctx, h.sessions, h.clock, h.loc, h.historyDays)
	if err != nil {
		return nil, err
	}

	pattern := h.analyzer.Analyze(sessions)
	now := h.clock.Now().In(h.loc)
	return &RecommendationsResult{
		Recommendation: h.engine.ContextualRecommendation(pattern, now),
		NextFocusTime:  h.engine.NextOptimalFocusTime(pattern, now),
		SessionSetup:   h.engine.SessionSetup(pattern, prefs),
	}, nil
}
