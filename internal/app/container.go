// Package app wires configuration, storage, messaging and services into a
// Container used by the CLI.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	analyticsApp "github.com/ogenrwotdaniel/focusflow/internal/analytics/application"
	analyticsServices "github.com/ogenrwotdaniel/focusflow/internal/analytics/application/services"
	focusQueries "github.com/ogenrwotdaniel/focusflow/internal/focus/application/queries"
	focusServices "github.com/ogenrwotdaniel/focusflow/internal/focus/application/services"
	focusDomain "github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/focus/infrastructure/notify"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/database"
	_ "github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/database/postgres" // registers the postgres driver
	_ "github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/database/sqlite"   // registers the sqlite driver
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/eventbus"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/migrations"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/outbox"
	"github.com/ogenrwotdaniel/focusflow/pkg/config"
	"github.com/ogenrwotdaniel/focusflow/pkg/observability"
)

// shutdownTimeout bounds the final journal flush and the metrics server
// shutdown.
const shutdownTimeout = 5 * time.Second

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics

	// Infrastructure
	DBConn      database.Connection
	RedisClient *redis.Client
	Bus         *eventbus.InProcessEventBus
	Publisher   eventbus.Publisher
	Outbox      *outbox.Processor
	Health      *observability.HealthRegistry

	// Stores
	SessionStore focusDomain.SessionStore
	TreeStore    focusDomain.TreeStore
	Preferences  prefDomain.PreferenceStore

	// Focus
	Journal       *focusServices.WriteJournal
	GrowthService *focusServices.TreeGrowthService
	Timer         *focusServices.TimerService

	// Garden Query Handlers
	ListTreesHandler   *focusQueries.ListTreesHandler
	GardenStatsHandler *focusQueries.GardenStatsHandler

	// Session history
	ListSessionsHandler *focusQueries.ListSessionsHandler

	// Analytics
	AnalyticsService *analyticsApp.Service

	broker        eventbus.Publisher
	metricsServer *http.Server
	cancel        context.CancelFunc
	background    sync.WaitGroup
}

// NewContainer creates a new dependency injection container. Without
// DATABASE_URL sessions are kept in the local SQLite file.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	logger = observability.OrDefault(logger)
	c := &Container{
		Config: cfg,
		Logger: logger,
		Health: observability.NewHealthRegistry(),
	}
	c.initMetrics()

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
		MaxConns:   cfg.DatabaseMaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.Health.Register("database", observability.PingChecker(conn.Ping))
	logger.Info("connected to database", "driver", conn.Driver())

	if err := migrations.Run(ctx, conn); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := c.initStores(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initEventBus(); err != nil {
		c.Close()
		return nil, err
	}
	c.initServices()

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		c.Journal.Run(runCtx)
	}()
	if c.Outbox != nil {
		c.background.Add(1)
		go func() {
			defer c.background.Done()
			c.Outbox.Run(runCtx)
		}()
	}

	return c, nil
}

func (c *Container) initMetrics() {
	if c.Config.MetricsAddr == "" {
		c.Metrics = observability.NoopMetrics{}
		return
	}

	prom := observability.NewPrometheusMetrics()
	c.Metrics = prom

	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler())
	mux.HandleFunc("/healthz", c.serveHealth)
	c.metricsServer = &http.Server{
		Addr:              c.Config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := c.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.Logger.Warn("metrics server stopped", "addr", c.Config.MetricsAddr, "error", err)
		}
	}()
	c.Logger.Info("serving metrics", "addr", c.Config.MetricsAddr)
}

func (c *Container) initStores(ctx context.Context) error {
	sessions, trees, err := newFocusStores(c.DBConn, c.breakerConfig(), c.Logger, c.Metrics)
	if err != nil {
		return err
	}
	c.SessionStore = sessions
	c.TreeStore = trees

	defaults := PreferenceDefaults(c.Config)
	var backing prefDomain.PreferenceStore

	// Connect to Redis (optional in development)
	if c.Config.RedisURL != "" {
		client, err := connectRedis(ctx, c.Config.RedisURL)
		switch {
		case err == nil:
			c.RedisClient = client
			c.Health.Register("redis", observability.PingChecker(func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			}))
			backing = newRedisPreferences(client, c.Config.RedisNamespace, defaults)
			c.Logger.Info("connected to Redis")
		case c.Config.IsDevelopment():
			c.Logger.Warn("Redis not available, preferences will use in-memory fallback", "error", err)
			backing = newMemoryPreferences(defaults)
		default:
			return err
		}
	} else {
		backing = newSQLPreferences(c.DBConn, defaults)
	}

	c.Preferences = guardPreferences(backing, c.breakerConfig(), c.Logger, c.Metrics)
	return nil
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// initEventBus publishes to the in-process bus. With a broker configured,
// events also go to the outbox and a processor relays them.
func (c *Container) initEventBus() error {
	c.Bus = eventbus.NewInProcessEventBus(c.Logger)
	c.Publisher = c.Bus
	if c.Config.EventBusURL == "" {
		return nil
	}

	broker, err := eventbus.NewPublisher(c.Config.EventBusURL, c.Config.EventBusExchange, c.Logger)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to event bus: %w", err)
		}
		c.Logger.Warn("event bus not available, events stay in process", "error", err)
		return nil
	}

	repo, err := outbox.NewRepository(c.DBConn)
	if err != nil {
		_ = broker.Close()
		return fmt.Errorf("failed to create outbox: %w", err)
	}
	c.broker = broker
	c.Outbox = outbox.NewProcessor(repo, broker, outbox.ProcessorConfig{
		PollInterval: c.Config.OutboxPollInterval,
		MaxRetries:   c.Config.OutboxMaxRetries,
	}, c.Logger, c.Metrics)
	c.Publisher = eventbus.FanOut{c.Bus, outbox.NewPublisher(repo)}
	c.Health.Register("outbox", outboxChecker(c.Outbox))
	return nil
}

func (c *Container) initServices() {
	clock := focusDomain.SystemClock{}

	c.Journal = focusServices.NewWriteJournal(focusServices.JournalConfig{
		RetryInterval: c.Config.JournalRetryInterval,
		RetryBurst:    c.Config.JournalRetryBurst,
	}, c.Logger, c.Metrics)
	c.Health.Register("journal", journalChecker(c.Journal))

	notifier := notify.NewEventNotifier(c.Publisher, clock, c.Logger, c.Metrics)

	c.GrowthService = focusServices.NewTreeGrowthService(
		c.TreeStore, c.Preferences, c.Journal, clock, notifier, c.Logger, c.Metrics,
	)
	c.Timer = focusServices.NewTimerService(focusServices.TimerDeps{
		Sessions:    c.SessionStore,
		Growth:      c.GrowthService,
		Journal:     c.Journal,
		Preferences: c.Preferences,
		Notifier:    notifier,
		Audio:       notify.NewLoggingAudio(c.Logger),
		Clock:       clock,
		Logger:      c.Logger,
		Metrics:     c.Metrics,
	}, focusServices.TimerConfig{
		TickInterval: c.Config.TickInterval,
	})

	c.ListTreesHandler = focusQueries.NewListTreesHandler(c.TreeStore)
	c.GardenStatsHandler = focusQueries.NewGardenStatsHandler(c.TreeStore)
	c.ListSessionsHandler = focusQueries.NewListSessionsHandler(c.SessionStore)

	c.AnalyticsService = analyticsApp.NewService(
		c.SessionStore,
		c.Preferences,
		clock,
		analyticsApp.Settings{
			Location:    time.Local,
			HistoryDays: analyticsServices.DefaultHistoryDays,
		},
		c.Logger,
		c.Metrics,
	)
}

func (c *Container) serveHealth(w http.ResponseWriter, r *http.Request) {
	results := c.Health.Check(r.Context())
	status := observability.OverallStatus(results)

	w.Header().Set("Content-Type", "application/json")
	if status == observability.HealthStatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"checks": results,
	})
}

// AttachConsole prints focus notifications to out as they are published.
func (c *Container) AttachConsole(out io.Writer) {
	notify.NewConsole(out).Subscribe(c.Bus)
}

// EventSource returns the broker settings the events command consumes from.
func (c *Container) EventSource() eventbus.ConsumerConfig {
	return eventbus.ConsumerConfig{
		URL:      c.Config.EventBusURL,
		Exchange: c.Config.EventBusExchange,
		Logger:   c.Logger,
	}
}

func (c *Container) breakerConfig() breakerSettings {
	return breakerSettings{
		FailureThreshold: c.Config.BreakerFailureThreshold,
		Timeout:          c.Config.BreakerTimeout,
	}
}

// Close releases all resources. A session still running is abandoned and
// queued writes get one last chance to reach the store.
func (c *Container) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if c.Timer != nil {
		if err := c.Timer.Stop(ctx); err != nil {
			c.Logger.Warn("error stopping timer", "error", err)
		}
		c.Timer.Close()
	}

	if c.cancel != nil {
		c.cancel()
		c.background.Wait()
	}
	if c.Journal != nil {
		if err := c.Journal.Flush(ctx); err != nil {
			c.Logger.Error("writes lost on shutdown", "pending", c.Journal.Pending(), "error", err)
		}
	}
	if c.Outbox != nil {
		if _, err := c.Outbox.ProcessOnce(ctx); err != nil {
			c.Logger.Warn("events left in outbox", "error", err)
		}
	}

	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}
	if c.broker != nil {
		if err := c.broker.Close(); err != nil {
			c.Logger.Warn("error closing event broker", "error", err)
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			c.Logger.Warn("error stopping metrics server", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBConn.Driver())
		}
	}
}
