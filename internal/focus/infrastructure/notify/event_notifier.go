// Package notify turns timer notifications into published events.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	sharedDomain "github.com/ogenrwotdaniel/focusflow/internal/shared/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/eventbus"
	"github.com/ogenrwotdaniel/focusflow/pkg/observability"
)

// EventNotifier implements domain.Notifier by publishing each notification
// as a JSON event. Publish failures are logged and never reach the timer.
type EventNotifier struct {
	publisher eventbus.Publisher
	clock     domain.Clock
	logger    *slog.Logger
	metrics   observability.Metrics
}

// NewEventNotifier creates a notifier publishing through publisher.
func NewEventNotifier(publisher eventbus.Publisher, clock domain.Clock, logger *slog.Logger, metrics observability.Metrics) *EventNotifier {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &EventNotifier{
		publisher: publisher,
		clock:     clock,
		logger:    observability.OrDefault(logger).With("component", "notifier"),
		metrics:   metrics,
	}
}

func (n *EventNotifier) OnSessionStarted(ctx context.Context, s *domain.Session) {
	n.publish(ctx, domain.NewSessionStarted(s, n.clock.Now()))
}

func (n *EventNotifier) OnSessionPaused(ctx context.Context, s *domain.Session) {
	n.publish(ctx, domain.NewSessionPaused(s, n.clock.Now()))
}

func (n *EventNotifier) OnSessionResumed(ctx context.Context, s *domain.Session) {
	n.publish(ctx, domain.NewSessionResumed(s, n.clock.Now()))
}

func (n *EventNotifier) OnSessionCompleted(ctx context.Context, s *domain.Session) {
	n.publish(ctx, domain.NewSessionCompleted(s, n.clock.Now()))
}

func (n *EventNotifier) OnSessionAbandoned(ctx context.Context, s *domain.Session) {
	n.publish(ctx, domain.NewSessionAbandoned(s, n.clock.Now()))
}

func (n *EventNotifier) OnBreakEndingSoon(ctx context.Context, s *domain.Session, remaining time.Duration) {
	n.publish(ctx, domain.NewBreakEndingSoon(s, remaining, n.clock.Now()))
}

func (n *EventNotifier) OnTreeGrowthChanged(ctx context.Context, t *domain.Tree, previous domain.GrowthStage) {
	n.publish(ctx, domain.NewTreeGrowthChanged(t, previous, n.clock.Now()))
}

func (n *EventNotifier) OnMotivationalMessage(ctx context.Context, text string) {
	n.publish(ctx, domain.NewMotivationalMessage(text, n.clock.Now()))
}

type correlatable interface {
	sharedDomain.DomainEvent
	SetCorrelationID(id string)
}

func (n *EventNotifier) publish(ctx context.Context, event correlatable) {
	if corrID := observability.CorrelationIDFromContext(ctx); corrID != "" {
		event.SetCorrelationID(corrID)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.ErrorContext(ctx, "failed to encode event", "routing_key", event.RoutingKey(), "error", err)
		return
	}

	if err := n.publisher.Publish(ctx, event.RoutingKey(), payload); err != nil {
		n.logger.WarnContext(ctx, "failed to publish event",
			"routing_key", event.RoutingKey(),
			"event_id", event.EventID(),
			"error", err,
		)
		return
	}
	n.metrics.Counter(observability.MetricEventsPublished, 1, observability.T("routing_key", event.RoutingKey()))
}
