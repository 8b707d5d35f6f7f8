// Package timer provides the interactive focus timer command.
package timer

import (
	"github.com/spf13/cobra"
)

// Cmd is the root command for timer operations.
var Cmd = &cobra.Command{
	Use:     "timer",
	Short:   "Run focus and break sessions",
	Aliases: []string{"focus", "pomodoro"},
	Long: `Run a focus or break session in the foreground.

While the timer runs, type a command and press enter:
  p  pause
  r  resume
  s  stop (the session is abandoned and its tree withers)
  k  skip the rest of a break

Examples:
  focusflow timer start                 # focus for your preferred length
  focusflow timer start --minutes 50    # focus for 50 minutes
  focusflow timer start --break         # short break
  focusflow timer start --long-break    # long break`,
}

func init() {
	Cmd.AddCommand(startCmd)
}
