// Package application contains the application layer for the analytics
// bounded context.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ogenrwotdaniel/focusflow/internal/analytics/application/queries"
	"github.com/ogenrwotdaniel/focusflow/internal/analytics/application/services"
	"github.com/ogenrwotdaniel/focusflow/internal/analytics/domain"
	focusDomain "github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
	"github.com/ogenrwotdaniel/focusflow/pkg/observability"
)

// Settings configures the analytics service.
type Settings struct {
	// Location is the time zone days and hours are read in.
	Location *time.Location

	// HistoryDays bounds how far back patterns and dashboards look.
	HistoryDays int
}

// Service provides a facade over all analytics handlers.
type Service struct {
	getDashboardHandler       *queries.GetDashboardHandler
	getTrendsHandler          *queries.GetTrendsHandler
	getPatternsHandler        *queries.GetPatternsHandler
	getRecommendationsHandler *queries.GetRecommendationsHandler

	logger  *slog.Logger
	metrics observability.Metrics
}

// NewService creates a new analytics service.
func NewService(
	sessions focusDomain.SessionStore,
	prefs prefDomain.PreferenceStore,
	clock focusDomain.Clock,
	settings Settings,
	logger *slog.Logger,
	metrics observability.Metrics,
) *Service {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	logger = observability.OrDefault(logger).With("component", "analytics")

	analyzer := services.NewFocusPatternAnalyzer(settings.Location)
	engine := services.NewRecommendationEngine()
	insights := services.NewProductivityInsights(
		sessions, analyzer, engine, clock, settings.Location, settings.HistoryDays, logger, metrics,
	)

	return &Service{
		getDashboardHandler: queries.NewGetDashboardHandler(insights),
		getTrendsHandler:    queries.NewGetTrendsHandler(sessions, prefs, clock, settings.Location),
		getPatternsHandler: queries.NewGetPatternsHandler(
			sessions, analyzer, engine, clock, settings.Location, settings.HistoryDays,
		),
		getRecommendationsHandler: queries.NewGetRecommendationsHandler(
			sessions, prefs, analyzer, engine, clock, settings.Location, settings.HistoryDays,
		),
		logger:  logger,
		metrics: metrics,
	}
}

// GetDashboard returns the productivity dashboard.
func (s *Service) GetDashboard(ctx context.Context, query queries.GetDashboardQuery) (*domain.Dashboard, error) {
	return s.getDashboardHandler.Handle(ctx, query)
}

// GetTrends returns trends, patterns, streaks and their descriptions.
func (s *Service) GetTrends(ctx context.Context, query queries.GetTrendsQuery) (*queries.TrendsResult, error) {
	return observability.TimeOperationResult(s.logger, s.metrics, "trends", func() (*queries.TrendsResult, error) {
		return s.getTrendsHandler.Handle(ctx, query)
	})
}

// GetPatterns returns the focus pattern.
func (s *Service) GetPatterns(ctx context.Context, query queries.GetPatternsQuery) (*queries.PatternsResult, error) {
	return observability.TimeOperationResult(s.logger, s.metrics, "patterns", func() (*queries.PatternsResult, error) {
		return s.getPatternsHandler.Handle(ctx, query)
	})
}

// GetRecommendations returns advice for right now.
func (s *Service) GetRecommendations(ctx context.Context, query queries.GetRecommendationsQuery) (*queries.RecommendationsResult, error) {
	return observability.TimeOperationResult(s.logger, s.metrics, "recommendations", func() (*queries.RecommendationsResult, error) {
		return s.getRecommendationsHandler.Handle(ctx, query)
	})
}
