// Package queries contains query handlers for the analytics bounded context.
package queries

import (
	"context"

	"github.com/ogenrwotdaniel/focusflow/internal/analytics/application/services"
	"github.com/ogenrwotdaniel/focusflow/internal/analytics/domain"
)

// GetDashboardQuery represents the query for the productivity dashboard.
type GetDashboardQuery struct{}

// GetDashboardHandler handles dashboard queries.
type GetDashboardHandler struct {
	insights *services.ProductivityInsights
}

// NewGetDashboardHandler creates a new get dashboard handler.
func NewGetDashboardHandler(insights *services.ProductivityInsights) *GetDashboardHandler {
	return &GetDashboardHandler{insights: insights}
}

// Handle executes the get dashboard query. On a store failure the partial
// dashboard is returned together with the error.
func (h *GetDashboardHandler) Handle(ctx context.Context, _ GetDashboardQuery) (*domain.Dashboard, error) {
	return h.insights.Dashboard(ctx)
}
