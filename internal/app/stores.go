package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	focusServices "github.com/ogenrwotdaniel/focusflow/internal/focus/application/services"
	focusDomain "github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/focus/infrastructure/persistence"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
	prefInfra "github.com/ogenrwotdaniel/focusflow/internal/preferences/infrastructure"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/database"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/outbox"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/resilience"
	"github.com/ogenrwotdaniel/focusflow/pkg/config"
	"github.com/ogenrwotdaniel/focusflow/pkg/observability"
)

type breakerSettings struct {
	FailureThreshold uint32
	Timeout          time.Duration
}

func (s breakerSettings) config() resilience.BreakerConfig {
	cfg := resilience.DefaultBreakerConfig()
	if s.FailureThreshold > 0 {
		cfg.FailureThreshold = s.FailureThreshold
	}
	if s.Timeout > 0 {
		cfg.Timeout = s.Timeout
	}
	return cfg
}

// newFocusStores picks the session and tree repositories for the connection
// and puts each behind its own breaker.
func newFocusStores(
	conn database.Connection,
	breakers breakerSettings,
	logger *slog.Logger,
	metrics observability.Metrics,
) (focusDomain.SessionStore, focusDomain.TreeStore, error) {
	sessions, trees, err := persistence.NewStores(conn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create stores: %w", err)
	}

	sessionBreaker := resilience.NewBreaker("sessions", breakers.config(), logger, metrics)
	treeBreaker := resilience.NewBreaker("trees", breakers.config(), logger, metrics)

	return persistence.NewBreakerSessionStore(sessions, sessionBreaker),
		persistence.NewBreakerTreeStore(trees, treeBreaker),
		nil
}

func newRedisPreferences(client *redis.Client, namespace string, defaults prefDomain.Preferences) prefDomain.PreferenceStore {
	return prefInfra.NewRedisStore(client, namespace, defaults)
}

func newSQLPreferences(conn database.Connection, defaults prefDomain.Preferences) prefDomain.PreferenceStore {
	return prefInfra.NewSQLStore(conn, defaults)
}

func newMemoryPreferences(defaults prefDomain.Preferences) prefDomain.PreferenceStore {
	return prefInfra.NewMemoryStore(defaults)
}

func guardPreferences(
	next prefDomain.PreferenceStore,
	breakers breakerSettings,
	logger *slog.Logger,
	metrics observability.Metrics,
) prefDomain.PreferenceStore {
	return prefInfra.NewBreakerStore(next, resilience.NewBreaker("preferences", breakers.config(), logger, metrics))
}

// PreferenceDefaults builds the preferences used until the user saves their
// own, taking the configured values over the built-in ones.
func PreferenceDefaults(cfg *config.Config) prefDomain.Preferences {
	prefs := prefDomain.Defaults()
	if cfg == nil {
		return prefs
	}
	if cfg.FocusMinutes > 0 {
		prefs.FocusMinutes = cfg.FocusMinutes
	}
	if cfg.ShortBreakMinutes > 0 {
		prefs.ShortBreakMinutes = cfg.ShortBreakMinutes
	}
	if cfg.LongBreakMinutes > 0 {
		prefs.LongBreakMinutes = cfg.LongBreakMinutes
	}
	if cfg.SessionsBeforeLongBreak > 0 {
		prefs.SessionsBeforeLongBreak = cfg.SessionsBeforeLongBreak
	}
	if cfg.AudioTrack != "" {
		prefs.AudioTrack = cfg.AudioTrack
	}
	if cfg.Volume >= 0 && cfg.Volume <= 100 {
		prefs.Volume = cfg.Volume
	}
	if cfg.TreeType != "" {
		prefs.TreeType = cfg.TreeType
	}
	if cfg.DailyFocusGoalMinutes > 0 {
		prefs.DailyFocusGoalMinutes = cfg.DailyFocusGoalMinutes
	}
	if cfg.TrendsLookbackDays > 0 {
		prefs.TrendsLookbackDays = cfg.TrendsLookbackDays
	}
	prefs.ScoreWeights = prefDomain.ParseScoreWeights(cfg.ScoreWeightsJSON)
	return prefs
}

// journalChecker is degraded while writes are queued and unhealthy once a
// retry has failed.
func journalChecker(journal *focusServices.WriteJournal) observability.HealthChecker {
	return func(context.Context) observability.HealthCheckResult {
		pending, err := journal.Status()
		switch {
		case pending == 0:
			return observability.HealthCheckResult{Status: observability.HealthStatusHealthy}
		case err != nil:
			return observability.HealthCheckResult{
				Status:  observability.HealthStatusUnhealthy,
				Message: fmt.Sprintf("%d writes pending: %v", pending, err),
			}
		default:
			return observability.HealthCheckResult{
				Status:  observability.HealthStatusDegraded,
				Message: fmt.Sprintf("%d writes pending", pending),
			}
		}
	}
}

// outboxChecker is degraded while messages are dead-lettered or the relay
// falls more than a minute behind.
func outboxChecker(processor *outbox.Processor) observability.HealthChecker {
	return func(context.Context) observability.HealthCheckResult {
		stats := processor.Stats()
		switch {
		case stats.Dead > 0:
			return observability.HealthCheckResult{
				Status:  observability.HealthStatusDegraded,
				Message: fmt.Sprintf("%d events dead-lettered: %s", stats.Dead, stats.LastError),
			}
		case stats.LagSeconds > time.Minute.Seconds():
			return observability.HealthCheckResult{
				Status:  observability.HealthStatusDegraded,
				Message: fmt.Sprintf("relay %.0fs behind: %s", stats.LagSeconds, stats.LastError),
			}
		default:
			return observability.HealthCheckResult{Status: observability.HealthStatusHealthy}
		}
	}
}
