package insights

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ogenrwotdaniel/focusflow/adapter/cli"
	"github.com/ogenrwotdaniel/focusflow/internal/analytics/application/queries"
	"github.com/ogenrwotdaniel/focusflow/internal/analytics/domain"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "View productivity dashboard",
	Long: `Display your productivity dashboard.

Shows:
- Productivity score and current streak
- Sessions, completion rate and focus time for today, this week and this month
- When in the day you start sessions
- Your best hours to focus
- Top insights

Examples:
  focusflow insights dashboard`,
	Aliases: []string{"dash", "d"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyticsService == nil {
			return errNoService
		}

		dashboard, err := analyticsService.GetDashboard(cmd.Context(), queries.GetDashboardQuery{})
		if err != nil {
			return fmt.Errorf("failed to get dashboard: %w", err)
		}
		renderDashboard(cmd.OutOrStdout(), dashboard)
		return nil
	},
}

func renderDashboard(out io.Writer, d *domain.Dashboard) {
	cli.Heading(out, "PRODUCTIVITY DASHBOARD")
	fmt.Fprintf(out, "  Productivity Score: %d/100\n", d.ProductivityScore)
	fmt.Fprintf(out, "  Current Streak: %s\n", days(d.CurrentStreak))

	for _, m := range []domain.ProductivityMetrics{d.Daily, d.Weekly, d.Monthly} {
		renderMetrics(out, m)
	}

	cli.Section(out, "TIME OF DAY")
	for _, b := range d.Distribution {
		fmt.Fprintf(out, "    %-24s %s %d\n", b.Label, strings.Repeat("#", b.Count), b.Count)
	}

	if len(d.OptimalHours) > 0 {
		cli.Section(out, "BEST HOURS")
		for _, h := range d.OptimalHours {
			fmt.Fprintf(out, "    %-6s %.1f/10\n", h.Label, h.Score)
		}
	}

	renderInsights(out, "TOP INSIGHTS", d.TopInsights)
	fmt.Fprintln(out)
}

func renderMetrics(out io.Writer, m domain.ProductivityMetrics) {
	cli.Section(out, strings.ToUpper(m.Label))
	if m.TotalSessions == 0 {
		fmt.Fprintln(out, "    No focus sessions yet.")
		return
	}
	fmt.Fprintf(out, "    Sessions: %d total | %d completed (%s)\n",
		m.TotalSessions, m.CompletedSessions, cli.Percent(m.CompletionRate))
	fmt.Fprintf(out, "    Focus Time: %dm | Avg Session: %dm\n", m.FocusMinutes, m.AverageSessionMinutes)
	fmt.Fprintf(out, "    Avg Rating: %.1f/10\n", m.AverageRating)
	fmt.Fprintf(out, "    Most Productive: %s\n", m.MostProductiveTime)
	fmt.Fprintf(out, "    Least Interrupted: %s\n", m.LeastInterruptedTime)
}

func renderInsights(out io.Writer, title string, insights []domain.Insight) {
	if len(insights) == 0 {
		return
	}
	cli.Section(out, title)
	for _, insight := range insights {
		fmt.Fprintf(out, "    %s\n", insight.Title)
		fmt.Fprintf(out, "      %s\n", insight.Description)
	}
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
