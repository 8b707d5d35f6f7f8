// Package insights provides the productivity analytics commands.
package insights

import (
	"errors"

	"github.com/spf13/cobra"

	analyticsApp "github.com/ogenrwotdaniel/focusflow/internal/analytics/application"
)

var analyticsService *analyticsApp.Service

var errNoService = errors.New("insights service not available")

// SetService configures the analytics service for CLI commands.
func SetService(service *analyticsApp.Service) {
	analyticsService = service
}

// Cmd is the root command for insights operations.
var Cmd = &cobra.Command{
	Use:   "insights",
	Short: "Productivity insights and analytics",
	Long: `View what your focus history says about how you work.

The insights system provides:
- A dashboard for today, this week and this month
- Trends comparing the recent half of a period with the older half
- Your best hours, session length and audio track
- Suggestions for when and how long to focus next
- Streaks of focused days

Examples:
  focusflow insights dashboard        # productivity dashboard
  focusflow insights trends --days 30 # trends over 30 days
  focusflow insights patterns         # your focus pattern
  focusflow insights recommend        # what to do now
  focusflow insights streak           # current and best streaks`,
}

func init() {
	Cmd.AddCommand(dashboardCmd)
	Cmd.AddCommand(trendsCmd)
	Cmd.AddCommand(patternsCmd)
	Cmd.AddCommand(recommendCmd)
	Cmd.AddCommand(streakCmd)
}
