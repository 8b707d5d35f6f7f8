package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogenrwotdaniel/focusflow/adapter/cli"
	"github.com/ogenrwotdaniel/focusflow/adapter/cli/events"
	"github.com/ogenrwotdaniel/focusflow/adapter/cli/garden"
	"github.com/ogenrwotdaniel/focusflow/adapter/cli/insights"
	"github.com/ogenrwotdaniel/focusflow/adapter/cli/settings"
	"github.com/ogenrwotdaniel/focusflow/adapter/cli/timer"
	"github.com/ogenrwotdaniel/focusflow/internal/app"
	"github.com/ogenrwotdaniel/focusflow/pkg/config"
	"github.com/ogenrwotdaniel/focusflow/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	args := os.Args[1:]

	// Load configuration
	logConfig := observability.DefaultLogConfig()
	logConfig.ServiceVersion = cli.Version
	cfg, err := config.LoadWithFile(cli.ConfigFile(args))
	if err != nil {
		// In development without a config file, use defaults
		observability.NewLogger(logConfig).Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	} else {
		logConfig.Level = observability.LogLevel(cfg.LogLevel)
		logConfig.Format = observability.LogFormat(cfg.LogFormat)
	}
	if cli.Verbose(args) {
		logConfig.Level = observability.LogLevelDebug
	}
	logger := observability.NewLogger(logConfig)
	cli.SetLogger(logger)

	// Try to initialize the full container
	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		// In development, allow version and help to run without storage
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()

		container.AttachConsole(os.Stdout)

		cliApp = cli.NewApp(
			container.Timer,
			container.Journal,
			container.ListTreesHandler,
			container.GardenStatsHandler,
			container.AnalyticsService,
			container.Preferences,
		)
		cliApp.SetListSessionsHandler(container.ListSessionsHandler)
		cliApp.SetHealthRegistry(container.Health)
		cliApp.SetEventSource(container.EventSource())

		insights.SetService(container.AnalyticsService)
	}

	// Set the CLI app
	cli.SetApp(cliApp)

	// Register commands
	cli.AddCommand(timer.Cmd)
	cli.AddCommand(insights.Cmd)
	cli.AddCommand(garden.Cmd)
	cli.AddCommand(settings.Cmd)
	cli.AddCommand(events.Cmd)

	// Execute CLI
	cli.Execute(ctx)
}
