package insights

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ogenrwotdaniel/focusflow/adapter/cli"
	"github.com/ogenrwotdaniel/focusflow/internal/analytics/application/queries"
)

var (
	patternsDays int
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "View your focus pattern",
	Long: `Show when and how you focus best: your strongest hours, the
session length you usually finish, your most productive day and the
audio track you rate highest.

Examples:
  focusflow insights patterns
  focusflow insights patterns --days 90`,
	Aliases: []string{"pattern", "p"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyticsService == nil {
			return errNoService
		}

		result, err := analyticsService.GetPatterns(cmd.Context(), queries.GetPatternsQuery{Days: patternsDays})
		if err != nil {
			return fmt.Errorf("failed to get patterns: %w", err)
		}
		renderPatterns(cmd.OutOrStdout(), result)
		return nil
	},
}

func renderPatterns(out io.Writer, r *queries.PatternsResult) {
	cli.Heading(out, "FOCUS PATTERN")
	fmt.Fprintf(out, "  Based on %d sessions\n", r.Sessions)

	p := r.Pattern
	if !p.HasEnoughData() {
		fmt.Fprintln(out, "  Complete a few more focus sessions to discover your pattern.")
		fmt.Fprintln(out)
		return
	}

	cli.Section(out, "OPTIMAL HOURS")
	for _, tr := range p.OptimalTimeRanges {
		fmt.Fprintf(out, "    %s\n", tr)
	}

	cli.Section(out, "HABITS")
	fmt.Fprintf(out, "    Session Length: %dm\n", p.OptimalDuration)
	fmt.Fprintf(out, "    Sessions per Day: %.1f\n", p.AverageSessionsPerDay)
	fmt.Fprintf(out, "    Best Day: %s\n", p.MostProductiveDay)
	if p.PreferredAudioTrack != "" {
		fmt.Fprintf(out, "    Audio: %s\n", p.PreferredAudioTrack)
	}

	renderInsights(out, "INSIGHTS", r.Insights)
	fmt.Fprintln(out)
}

func init() {
	patternsCmd.Flags().IntVarP(&patternsDays, "days", "d", 0, "days of history to analyze (default 365)")
}
