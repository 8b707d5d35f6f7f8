package insights

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ogenrwotdaniel/focusflow/adapter/cli"
	"github.com/ogenrwotdaniel/focusflow/internal/analytics/application/queries"
)

var streakCmd = &cobra.Command{
	Use:     "streak",
	Short:   "View focus streaks",
	Aliases: []string{"streaks"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyticsService == nil {
			return errNoService
		}

		result, err := analyticsService.GetTrends(cmd.Context(), queries.GetTrendsQuery{})
		if err != nil {
			return fmt.Errorf("failed to get streaks: %w", err)
		}
		renderStreaks(cmd.OutOrStdout(), result)
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func renderStreaks(out io.Writer, r *queries.TrendsResult) {
	cli.Section(out, "STREAKS")
	for _, s := range r.Streaks {
		status := ""
		if s.IsActive {
			status = " (active)"
		}
		name := strings.ReplaceAll(string(s.Type), "_", " ")
		fmt.Fprintf(out, "    %-32s current %s | best %s%s\n", name, days(s.CurrentDays), days(s.BestDays), status)
	}
}
