package insights

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ogenrwotdaniel/focusflow/adapter/cli"
	"github.com/ogenrwotdaniel/focusflow/internal/analytics/application/queries"
)

var recommendCmd = &cobra.Command{
	Use:     "recommend",
	Short:   "Get a focus suggestion for right now",
	Aliases: []string{"rec", "next"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyticsService == nil {
			return errNoService
		}

		result, err := analyticsService.GetRecommendations(cmd.Context(), queries.GetRecommendationsQuery{})
		if err != nil {
			return fmt.Errorf("failed to get recommendations: %w", err)
		}
		renderRecommendations(cmd.OutOrStdout(), result)
		return nil
	},
}

func renderRecommendations(out io.Writer, r *queries.RecommendationsResult) {
	rec := r.Recommendation
	cli.Heading(out, rec.Title)
	fmt.Fprintf(out, "  %s\n", rec.Description)
	fmt.Fprintf(out, "  > %s\n", rec.Action)
	fmt.Fprintf(out, "  Confidence: %s\n", cli.Percent(rec.Confidence*100))

	cli.Section(out, "NEXT SESSION")
	next := r.NextFocusTime
	if next.Now {
		fmt.Fprintln(out, "    Start: now")
	} else {
		fmt.Fprintf(out, "    Start: %s\n", next.At.Format("Mon 3:04 PM"))
	}
	fmt.Fprintf(out, "    %s\n", next.Explanation)

	setup := r.SessionSetup
	fmt.Fprintf(out, "    Focus %dm, then a %dm break\n", setup.FocusMinutes, setup.BreakMinutes)
	if setup.AudioTrack != "" {
		fmt.Fprintf(out, "    Audio: %s at %d%%\n", setup.AudioTrack, setup.Volume)
	}
	fmt.Fprintf(out, "    %s\n", setup.Explanation)
	fmt.Fprintln(out)
}
