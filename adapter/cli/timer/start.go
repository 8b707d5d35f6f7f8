package timer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ogenrwotdaniel/focusflow/adapter/cli"
	"github.com/ogenrwotdaniel/focusflow/internal/focus/application/services"
	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
)

var (
	startMinutes   int
	startBreak     bool
	startLongBreak bool
)

// Outcome describes how a foreground session ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeStopped   Outcome = "stopped"
	OutcomeSkipped   Outcome = "skipped"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a session and follow it until it ends",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Timer == nil {
			return errors.New("timer service not available")
		}
		if startBreak && startLongBreak {
			return errors.New("--break and --long-break are mutually exclusive")
		}

		kind, minutes := sessionPlan(app.CurrentPreferences(cmd.Context()), startBreak, startLongBreak, startMinutes)
		out := cmd.OutOrStdout()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		updates, unsubscribe := app.Timer.Subscribe()
		defer unsubscribe()

		info, err := app.Timer.Start(ctx, kind, minutes)
		if errors.Is(err, domain.ErrInvalidDuration) {
			return err
		}
		printHeader(out, kind, minutes)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "  warning: %v\n", err)
		}
		renderLine(out, info)

		outcome, err := Follow(ctx, app.Timer, updates, readCommands(ctx, cmd.InOrStdin()), out)
		printSummary(out, kind, outcome, app.Timer.Info())
		return err
	},
}

// Control is the part of the timer service the command drives.
type Control interface {
	Pause(ctx context.Context) domain.TimerInfo
	Resume(ctx context.Context) domain.TimerInfo
	Stop(ctx context.Context) error
	SkipBreak(ctx context.Context) error
}

// Follow renders timer snapshots and applies typed commands until the
// session ends. Cancelling ctx stops the session.
func Follow(ctx context.Context, timer Control, updates <-chan domain.TimerInfo, commands <-chan string, out io.Writer) (Outcome, error) {
	outcome := OutcomeCompleted
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return OutcomeStopped, timer.Stop(context.WithoutCancel(ctx))

		case line, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			next, err := apply(ctx, timer, line, out)
			if next != "" {
				outcome = next
			}
			if err != nil && !errors.Is(err, services.ErrWritePending) {
				fmt.Fprintf(out, "\n  warning: %v\n", err)
			}

		case info, ok := <-updates:
			if !ok {
				return outcome, nil
			}
			if info.State == domain.TimerIdle || info.State == domain.TimerFinished {
				renderLine(out, info)
				fmt.Fprintln(out)
				return outcome, nil
			}
			renderLine(out, info)
		}
	}
}

func apply(ctx context.Context, timer Control, line string, out io.Writer) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "p", "pause":
		renderLine(out, timer.Pause(ctx))
	case "r", "resume":
		renderLine(out, timer.Resume(ctx))
	case "s", "stop":
		return OutcomeStopped, timer.Stop(ctx)
	case "k", "skip":
		if err := timer.SkipBreak(ctx); err != nil {
			if errors.Is(err, services.ErrNotBreak) {
				fmt.Fprintln(out, "\n  only a break can be skipped")
				return "", nil
			}
			return OutcomeSkipped, err
		}
		return OutcomeSkipped, nil
	case "":
	default:
		fmt.Fprintln(out, "\n  commands: p pause, r resume, s stop, k skip break")
	}
	return "", nil
}

// sessionPlan picks the kind and length of the session to start.
func sessionPlan(prefs prefDomain.Preferences, isBreak, isLongBreak bool, minutes int) (domain.SessionKind, int) {
	kind := domain.SessionKindFocus
	planned := prefs.FocusMinutes
	switch {
	case isLongBreak:
		kind, planned = domain.SessionKindBreak, prefs.LongBreakMinutes
	case isBreak:
		kind, planned = domain.SessionKindBreak, prefs.ShortBreakMinutes
	}
	if minutes > 0 {
		planned = minutes
	}
	return kind, planned
}

func readCommands(ctx context.Context, in io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		forwardLines(ctx, in, ch)
	}()
	return ch
}

// forwardLines sends each line of in to ch until in is exhausted or ctx is
// done.
func forwardLines(ctx context.Context, in io.Reader, ch chan<- string) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case ch <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

func label(kind domain.SessionKind) string {
	if kind == domain.SessionKindBreak {
		return "BREAK"
	}
	return "FOCUS"
}

func printHeader(out io.Writer, kind domain.SessionKind, minutes int) {
	cli.Heading(out, label(kind)+" MODE")
	fmt.Fprintf(out, "  Duration: %d minutes\n", minutes)
	fmt.Fprintln(out, "  p pause | r resume | s stop | k skip break | Ctrl+C stop")
	fmt.Fprintln(out)
}

func renderLine(out io.Writer, info domain.TimerInfo) {
	if info.State == domain.TimerIdle {
		return
	}
	line := fmt.Sprintf("\r  [%s] %s [%s] %3.0f%% %-8s",
		label(info.Kind),
		cli.FormatClock(info.Remaining),
		cli.ProgressBar(info.Progress, 30),
		info.Progress*100,
		info.State,
	)
	if info.Sync != "" && info.Sync != domain.SyncSynced {
		line += " (sync " + string(info.Sync) + ")"
	}
	fmt.Fprint(out, line)
}

func printSummary(out io.Writer, kind domain.SessionKind, outcome Outcome, after domain.TimerInfo) {
	fmt.Fprintln(out)
	switch {
	case outcome == OutcomeStopped && kind == domain.SessionKindFocus:
		fmt.Fprintln(out, "  Session stopped before the timer finished.")
	case outcome == OutcomeStopped:
		fmt.Fprintln(out, "  Break stopped.")
	case outcome == OutcomeSkipped:
		fmt.Fprintln(out, "  Break skipped. Ready for the next session.")
	case kind == domain.SessionKindFocus:
		fmt.Fprintln(out, "  Focus session complete! Your tree is fully grown.")
	default:
		fmt.Fprintln(out, "  Break complete! Ready for the next session.")
	}
	if after.Sync != "" && after.Sync != domain.SyncSynced {
		fmt.Fprintf(out, "  Some writes are pending and will be retried: %s\n", after.LastError)
	}
	fmt.Fprintln(out, strings.Repeat("=", cli.RuleWidth))
}

func init() {
	startCmd.Flags().IntVarP(&startMinutes, "minutes", "m", 0, "session length in minutes (default from settings)")
	startCmd.Flags().BoolVarP(&startBreak, "break", "b", false, "start a short break")
	startCmd.Flags().BoolVarP(&startLongBreak, "long-break", "l", false, "start a long break")
}
