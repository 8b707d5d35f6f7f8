// Package eventbus delivers FocusFlow events to local handlers or a broker.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Publisher defines the interface for publishing events to a message broker.
type Publisher interface {
	// Publish sends a message to the event bus.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// NewPublisher picks the broker from the URL scheme: amqp(s):// for
// RabbitMQ, nats:// for NATS. An empty URL yields a no-op publisher.
func NewPublisher(url, exchange string, logger *slog.Logger) (Publisher, error) {
	switch {
	case url == "":
		return NewNoopPublisher(logger), nil
	case strings.HasPrefix(url, "amqp://"), strings.HasPrefix(url, "amqps://"):
		return NewRabbitMQPublisher(url, exchange, logger)
	case strings.HasPrefix(url, "nats://"), strings.HasPrefix(url, "tls://"):
		return NewNATSPublisher(url, exchange, logger)
	default:
		return nil, fmt.Errorf("unsupported event bus URL scheme: %s", url)
	}
}

// FanOut publishes every message to all publishers. The first error is
// returned after all publishers were tried.
type FanOut []Publisher

// Publish sends the message to every publisher.
func (f FanOut) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var firstErr error
	for _, p := range f {
		if err := p.Publish(ctx, routingKey, payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes every publisher.
func (f FanOut) Close() error {
	var firstErr error
	for _, p := range f {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NoopPublisher is a no-op publisher for tests and local mode.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a publisher that does nothing.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

// Publish logs the message but doesn't actually publish.
func (p *NoopPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.logger.Debug("noop publish",
		"routing_key", routingKey,
		"size", len(payload),
	)
	return nil
}

// Close is a no-op.
func (p *NoopPublisher) Close() error {
	return nil
}
