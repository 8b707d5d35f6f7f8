// Package garden provides commands that show the trees grown by focus sessions.
package garden

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ogenrwotdaniel/focusflow/adapter/cli"
	"github.com/ogenrwotdaniel/focusflow/internal/focus/application/queries"
	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
)

var (
	listLimit int
	listStage string
)

// Cmd is the root command for garden operations.
var Cmd = &cobra.Command{
	Use:   "garden",
	Short: "View the trees your focus sessions grew",
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List trees, newest first",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListTreesHandler == nil {
			return errors.New("garden service not available")
		}
		if listStage != "" && !domain.GrowthStage(listStage).IsValid() {
			return fmt.Errorf("unknown stage %q", listStage)
		}

		trees, err := app.ListTreesHandler.Handle(cmd.Context(), queries.ListTreesQuery{
			Limit: listLimit,
			Stage: listStage,
		})
		if err != nil {
			return fmt.Errorf("failed to list trees: %w", err)
		}
		renderTrees(cmd.OutOrStdout(), trees)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show garden statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GardenStatsHandler == nil {
			return errors.New("garden service not available")
		}

		stats, err := app.GardenStatsHandler.Handle(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get garden stats: %w", err)
		}
		renderStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

func renderTrees(out io.Writer, trees []queries.TreeDTO) {
	if len(trees) == 0 {
		fmt.Fprintln(out, "Your garden is empty. Start a focus session to plant a tree.")
		return
	}
	fmt.Fprintf(out, "%-10s %-8s %-9s %s\n", "ID", "TYPE", "STAGE", "PLANTED")
	for _, t := range trees {
		fmt.Fprintf(out, "%-10s %-8s %-9s %s\n",
			t.ID.String()[:8],
			t.Type,
			t.Stage,
			t.PlantedAt.Local().Format("Jan 2 15:04"),
		)
	}
}

func renderStats(out io.Writer, s *queries.GardenStats) {
	cli.Heading(out, "GARDEN")
	fmt.Fprintf(out, "  Trees: %d | Fully Grown: %d | Withered: %d | Growing: %d\n",
		s.Total, s.FullyGrown, s.Withered, s.Growing)
	fmt.Fprintf(out, "  Success Rate: %s\n", cli.Percent(s.SuccessRate*100))

	cli.Section(out, "BY STAGE")
	for _, stage := range domain.AllStages {
		n := s.ByStage[stage]
		fmt.Fprintf(out, "    %-9s %s %d\n", stage, strings.Repeat("#", n), n)
	}
	fmt.Fprintln(out)
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", queries.DefaultTreeLimit, "maximum trees to show")
	listCmd.Flags().StringVar(&listStage, "stage", "", "only trees in this stage")

	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(statsCmd)
}
