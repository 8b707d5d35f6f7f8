package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogenrwotdaniel/focusflow/pkg/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check storage and broker connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("app not initialized")
		}
		out := cmd.OutOrStdout()
		if app.Health == nil {
			fmt.Fprintln(out, "ok")
			return nil
		}

		results := app.Health.Check(cmd.Context())
		for _, r := range results {
			line := fmt.Sprintf("  %-12s %-10s %v", r.Name, r.Status, r.Duration.Round(time.Millisecond))
			if r.Message != "" {
				line += "  " + r.Message
			}
			fmt.Fprintln(out, line)
		}
		status := observability.OverallStatus(results)
		fmt.Fprintf(out, "status: %s\n", status)
		if status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
