package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNoBroker is returned by NewConsumer when no broker URL is configured.
var ErrNoBroker = errors.New("no event bus URL configured")

// Consumer receives events published by another FocusFlow process.
type Consumer interface {
	// Subscribe registers a handler for a routing key pattern. Handlers
	// must be registered before Start.
	Subscribe(pattern string, handler Handler)

	// Start delivers messages until ctx is cancelled. This is a blocking call.
	Start(ctx context.Context) error

	// Close closes the consumer connection.
	Close() error
}

// ConsumerConfig configures NewConsumer.
type ConsumerConfig struct {
	URL      string
	Exchange string
	// QueueName names a durable RabbitMQ queue. Empty uses a temporary
	// queue that is deleted on disconnect.
	QueueName string
	Logger    *slog.Logger
}

// NewConsumer picks the broker from the URL scheme, like NewPublisher.
func NewConsumer(cfg ConsumerConfig) (Consumer, error) {
	switch url := cfg.URL; {
	case url == "":
		return nil, ErrNoBroker
	case strings.HasPrefix(url, "amqp://"), strings.HasPrefix(url, "amqps://"):
		return NewRabbitMQConsumer(cfg)
	case strings.HasPrefix(url, "nats://"), strings.HasPrefix(url, "tls://"):
		return NewNATSConsumer(cfg)
	default:
		return nil, fmt.Errorf("unsupported event bus URL scheme: %s", url)
	}
}
