package cli

import (
	"context"

	analyticsApp "github.com/ogenrwotdaniel/focusflow/internal/analytics/application"
	focusQueries "github.com/ogenrwotdaniel/focusflow/internal/focus/application/queries"
	focusServices "github.com/ogenrwotdaniel/focusflow/internal/focus/application/services"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/eventbus"
	"github.com/ogenrwotdaniel/focusflow/pkg/observability"
)

// App holds the CLI application dependencies.
type App struct {
	// Timer
	Timer   *focusServices.TimerService
	Journal *focusServices.WriteJournal

	// Garden Query Handlers
	ListTreesHandler   *focusQueries.ListTreesHandler
	GardenStatsHandler *focusQueries.GardenStatsHandler

	// Session history for export
	ListSessionsHandler *focusQueries.ListSessionsHandler

	// Analytics
	AnalyticsService *analyticsApp.Service

	// Settings
	Preferences prefDomain.PreferenceStore

	// Health checks for the health command
	Health *observability.HealthRegistry

	// Broker the events command tails; URL is empty without a broker
	EventSource eventbus.ConsumerConfig
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	timer *focusServices.TimerService,
	journal *focusServices.WriteJournal,
	listTreesHandler *focusQueries.ListTreesHandler,
	gardenStatsHandler *focusQueries.GardenStatsHandler,
	analyticsService *analyticsApp.Service,
	preferences prefDomain.PreferenceStore,
) *App {
	return &App{
		Timer:              timer,
		Journal:            journal,
		ListTreesHandler:   listTreesHandler,
		GardenStatsHandler: gardenStatsHandler,
		AnalyticsService:   analyticsService,
		Preferences:        preferences,
	}
}

// SetHealthRegistry updates the health registry.
func (a *App) SetHealthRegistry(registry *observability.HealthRegistry) {
	a.Health = registry
}

// SetListSessionsHandler updates the session history handler.
func (a *App) SetListSessionsHandler(handler *focusQueries.ListSessionsHandler) {
	a.ListSessionsHandler = handler
}

// SetEventSource updates the broker the events command consumes from.
func (a *App) SetEventSource(cfg eventbus.ConsumerConfig) {
	a.EventSource = cfg
}

// CurrentPreferences reads the stored preferences, falling back to the
// defaults when no store is configured or it cannot be read.
func (a *App) CurrentPreferences(ctx context.Context) prefDomain.Preferences {
	if a == nil || a.Preferences == nil {
		return prefDomain.Defaults()
	}
	prefs, err := a.Preferences.Get(ctx)
	if err != nil {
		return prefDomain.Defaults()
	}
	return prefs
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
