package insights

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ogenrwotdaniel/focusflow/adapter/cli"
	"github.com/ogenrwotdaniel/focusflow/internal/analytics/application/queries"
)

var (
	trendsDays int
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "View productivity trends",
	Long: `Analyze your productivity trends over time.

The period is split in half and each metric of the recent half is
compared with the older half. Also shows streaks and recurring patterns.

Examples:
  focusflow insights trends           # lookback from settings
  focusflow insights trends --days 30 # last 30 days`,
	Aliases: []string{"trend", "t"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyticsService == nil {
			return errNoService
		}

		result, err := analyticsService.GetTrends(cmd.Context(), queries.GetTrendsQuery{Days: trendsDays})
		if err != nil {
			return fmt.Errorf("failed to get trends: %w", err)
		}
		renderTrends(cmd.OutOrStdout(), result)
		return nil
	},
}

func renderTrends(out io.Writer, r *queries.TrendsResult) {
	cli.Heading(out, fmt.Sprintf("PRODUCTIVITY TRENDS (Last %s)", days(len(r.Daily))))

	cli.Section(out, "CHANGE")
	if len(r.Trends) == 0 {
		fmt.Fprintln(out, "    Not enough history yet.")
	}
	for _, t := range r.Trends {
		arrow := "v"
		if t.IsImproving {
			arrow = "^"
		}
		fmt.Fprintf(out, "    %s %-22s %+.1f%%\n", arrow, t.MetricName, t.PercentageChange)
	}

	renderStreaks(out, r)

	if len(r.Insights) > 0 {
		cli.Section(out, "INSIGHTS")
		for _, line := range r.Insights {
			fmt.Fprintf(out, "    - %s\n", line)
		}
	}
	fmt.Fprintln(out)
}

func init() {
	trendsCmd.Flags().IntVarP(&trendsDays, "days", "d", 0, "days to analyze (default from settings)")
}
