package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogenrwotdaniel/focusflow/internal/analytics/application/queries"
	focusDomain "github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/focus/infrastructure/persistence"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
	prefInfra "github.com/ogenrwotdaniel/focusflow/internal/preferences/infrastructure"
	"github.com/ogenrwotdaniel/focusflow/pkg/observability"
)

func seed(t *testing.T, store focusDomain.SessionStore, start time.Time, minutes int, completed bool, rating float64) {
	t.Helper()
	session, err := focusDomain.NewSession(focusDomain.SessionKindFocus, minutes, start)
	require.NoError(t, err)
	require.NoError(t, session.Finish(start.Add(time.Duration(minutes)*time.Minute), completed))
	session.ProductivityRating = rating
	require.NoError(t, store.Create(context.Background(), session))
}

func newTestService(t *testing.T, now time.Time) (*Service, *observability.InMemoryMetrics) {
	t.Helper()
	sessions := persistence.NewMemorySessionRepository()
	for day := 0; day < 5; day++ {
		start := now.AddDate(0, 0, -day).Truncate(24 * time.Hour).Add(9 * time.Hour)
		seed(t, sessions, start, 25, true, 8)
		seed(t, sessions, start.Add(5*time.Hour), 25, day%2 == 0, 4)
	}

	metrics := observability.NewInMemoryMetrics()
	service := NewService(
		sessions,
		prefInfra.NewMemoryStore(prefDomain.Defaults()),
		focusDomain.ClockFunc(func() time.Time { return now }),
		Settings{Location: time.UTC, HistoryDays: 30},
		nil,
		metrics,
	)
	return service, metrics
}

func TestService(t *testing.T) {
	now := time.Date(2026, 3, 13, 9, 15, 0, 0, time.UTC)
	service, metrics := newTestService(t, now)
	ctx := context.Background()

	t.Run("dashboard", func(t *testing.T) {
		dashboard, err := service.GetDashboard(ctx, queries.GetDashboardQuery{})
		require.NoError(t, err)
		assert.Equal(t, 2, dashboard.Daily.TotalSessions)
		assert.Equal(t, 5, dashboard.CurrentStreak)
		assert.Equal(t, "9 AM", dashboard.Daily.MostProductiveTime)
		require.NotEmpty(t, dashboard.OptimalHours)
		assert.Equal(t, 9, dashboard.OptimalHours[0].Hour)
	})

	t.Run("trends", func(t *testing.T) {
		result, err := service.GetTrends(ctx, queries.GetTrendsQuery{})
		require.NoError(t, err)
		assert.Len(t, result.Daily, 5)
		assert.Len(t, result.Trends, 4)
		assert.NotEmpty(t, result.Insights)
	})

	t.Run("patterns", func(t *testing.T) {
		result, err := service.GetPatterns(ctx, queries.GetPatternsQuery{})
		require.NoError(t, err)
		assert.Equal(t, 10, result.Sessions)
		require.Len(t, result.Pattern.OptimalTimeRanges, 1)
		assert.Equal(t, 9, result.Pattern.OptimalTimeRanges[0].StartHour)
	})

	t.Run("recommendations", func(t *testing.T) {
		result, err := service.GetRecommendations(ctx, queries.GetRecommendationsQuery{})
		require.NoError(t, err)
		assert.True(t, result.NextFocusTime.Now)
		assert.Equal(t, 25, result.SessionSetup.FocusMinutes)
	})

	for _, op := range []string{"trends", "patterns", "recommendations", "dashboard"} {
		timings := metrics.GetTimings(observability.MetricAnalyticsDuration, observability.T(observability.OperationKey, op))
		assert.Len(t, timings, 1, op)
	}
}
