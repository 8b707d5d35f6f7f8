package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSConsumer subscribes to every subject under the prefix and routes by
// the routing key that follows it. Pattern matching happens in the
// registry since "#" has no NATS equivalent in the middle of a subject.
type NATSConsumer struct {
	conn     *nats.Conn
	prefix   string
	handlers *HandlerRegistry
	logger   *slog.Logger
}

// NewNATSConsumer connects to the NATS server in cfg.URL. cfg.Exchange is
// used as the subject prefix.
func NewNATSConsumer(cfg ConsumerConfig) (*NATSConsumer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prefix := cfg.Exchange
	if prefix == "" {
		prefix = DefaultExchange
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("focusflow-consumer"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(10),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("NATS consumer connected", "subject_prefix", prefix)
	return &NATSConsumer{
		conn:     conn,
		prefix:   prefix,
		handlers: NewHandlerRegistry(logger),
		logger:   logger,
	}, nil
}

// Subscribe registers a handler for a routing key pattern.
func (c *NATSConsumer) Subscribe(pattern string, handler Handler) {
	c.handlers.Register(pattern, handler)
}

// RoutingKey strips the subject prefix. ok is false for foreign subjects.
func (c *NATSConsumer) RoutingKey(subject string) (string, bool) {
	key, ok := strings.CutPrefix(subject, c.prefix+".")
	return key, ok && key != ""
}

// Start subscribes and blocks until ctx is cancelled.
func (c *NATSConsumer) Start(ctx context.Context) error {
	sub, err := c.conn.Subscribe(c.prefix+".>", func(msg *nats.Msg) {
		key, ok := c.RoutingKey(msg.Subject)
		if !ok {
			return
		}
		_, _ = c.handlers.Dispatch(ctx, key, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	c.logger.Info("started consuming events", "subject", sub.Subject)
	<-ctx.Done()
	return ctx.Err()
}

// Close drains the subscription and closes the connection.
func (c *NATSConsumer) Close() error {
	if c.conn.IsClosed() {
		return nil
	}
	return c.conn.Drain()
}
