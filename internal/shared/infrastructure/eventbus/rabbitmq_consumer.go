package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQConsumer consumes events from the FocusFlow topic exchange.
type RabbitMQConsumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queue     string
	exchange  string
	handlers  *HandlerRegistry
	logger    *slog.Logger
	mu        sync.Mutex
	running   bool
	closeOnce sync.Once
	closeChan chan struct{}
}

// NewRabbitMQConsumer dials the broker and declares the exchange and queue.
func NewRabbitMQConsumer(cfg ConsumerConfig) (*RabbitMQConsumer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	// An unnamed queue is server-named, exclusive and removed on disconnect.
	temporary := cfg.QueueName == ""
	q, err := ch.QueueDeclare(
		cfg.QueueName,
		!temporary, // durable
		temporary,  // auto-delete
		temporary,  // exclusive
		false,      // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	cfg.Logger.Info("RabbitMQ consumer connected",
		"queue", q.Name,
		"exchange", cfg.Exchange,
	)

	return &RabbitMQConsumer{
		conn:      conn,
		channel:   ch,
		queue:     q.Name,
		exchange:  cfg.Exchange,
		handlers:  NewHandlerRegistry(cfg.Logger),
		logger:    cfg.Logger,
		closeChan: make(chan struct{}),
	}, nil
}

// Subscribe registers a handler and binds the queue to the pattern. RabbitMQ
// topic bindings use the same "*" and "#" rules as MatchRoutingKey.
func (c *RabbitMQConsumer) Subscribe(pattern string, handler Handler) {
	c.handlers.Register(pattern, handler)
	if err := c.bindQueue(pattern); err != nil {
		c.logger.Error("failed to bind queue for pattern",
			"pattern", pattern,
			"error", err,
		)
	}
}

func (c *RabbitMQConsumer) bindQueue(routingKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.QueueBind(
		c.queue,
		routingKey,
		c.exchange,
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	c.logger.Debug("bound queue to routing key",
		"queue", c.queue,
		"routing_key", routingKey,
	)
	return nil
}

// Start consumes messages until ctx is cancelled or Close is called.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("consumer already running")
	}
	c.running = true
	c.mu.Unlock()

	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag (auto-generated)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("started consuming events", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer context cancelled, stopping")
			return ctx.Err()

		case <-c.closeChan:
			c.logger.Info("consumer close requested, stopping")
			return nil

		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("message channel closed")
				return fmt.Errorf("message channel closed unexpectedly")
			}
			c.processMessage(ctx, msg)
		}
	}
}

func (c *RabbitMQConsumer) processMessage(ctx context.Context, msg amqp.Delivery) {
	start := time.Now()
	delivered, err := c.handlers.Dispatch(ctx, msg.RoutingKey, msg.Body)
	duration := time.Since(start)

	if err != nil {
		// Not requeued: a handler that rejected the payload will reject it again.
		if nackErr := msg.Nack(false, false); nackErr != nil {
			c.logger.Error("failed to nack message", "error", nackErr)
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		c.logger.Error("failed to ack message", "error", ackErr)
	}

	c.logger.Debug("event processed",
		"routing_key", msg.RoutingKey,
		"handlers", delivered,
		"duration_ms", duration.Milliseconds(),
	)
}

// Close closes the consumer connection. It is safe to call more than once.
func (c *RabbitMQConsumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		close(c.closeChan)
		c.running = false

		if c.channel != nil {
			if chErr := c.channel.Close(); chErr != nil {
				c.logger.Warn("error closing channel", "error", chErr)
			}
		}
		if c.conn != nil {
			err = c.conn.Close()
		}
		c.logger.Info("RabbitMQ consumer closed")
	})
	return err
}
