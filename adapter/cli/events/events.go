// Package events provides a command that follows focus events published by
// another FocusFlow process through the configured broker.
package events

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ogenrwotdaniel/focusflow/adapter/cli"
	"github.com/ogenrwotdaniel/focusflow/internal/focus/infrastructure/notify"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/eventbus"
)

var tailQueue string

// newConsumer is replaced in tests.
var newConsumer = func(cfg eventbus.ConsumerConfig) (eventbus.Consumer, error) {
	return eventbus.NewConsumer(cfg)
}

// Cmd is the root command for event operations.
var Cmd = &cobra.Command{
	Use:   "events",
	Short: "Follow focus events from the event bus",
}

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print focus events as they are published",
	Long: `Print the notifications of timers running anywhere that publishes
to the same broker (EVENTBUS_URL). Stops on Ctrl+C.

Examples:
  focusflow events tail
  focusflow events tail --queue focusflow.audit   # durable queue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil {
			return errors.New("event source not available")
		}

		cfg := app.EventSource
		if tailQueue != "" {
			cfg.QueueName = tailQueue
		}
		consumer, err := newConsumer(cfg)
		if errors.Is(err, eventbus.ErrNoBroker) {
			return errors.New("no event bus configured: set EVENTBUS_URL")
		}
		if err != nil {
			return err
		}
		defer func() { _ = consumer.Close() }()

		notify.NewConsole(cmd.OutOrStdout()).Subscribe(consumer)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintln(cmd.ErrOrStderr(), "Waiting for events. Press Ctrl+C to stop.")
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	tailCmd.Flags().StringVar(&tailQueue, "queue", "", "durable RabbitMQ queue name (default: temporary queue)")

	Cmd.AddCommand(tailCmd)
}
