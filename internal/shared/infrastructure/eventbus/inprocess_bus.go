package eventbus

import (
	"context"
	"log/slog"
	"strings"
)

// Handler receives a published message.
type Handler func(ctx context.Context, routingKey string, payload []byte) error

type subscription struct {
	pattern string
	handler Handler
}

// InProcessEventBus delivers messages synchronously to handlers registered
// in this process, in registration order. It is how the CLI renders
// notifications without a broker.
type InProcessEventBus struct {
	handlers *HandlerRegistry
	logger   *slog.Logger
}

// NewInProcessEventBus creates a new in-process event bus.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{handlers: NewHandlerRegistry(logger), logger: logger}
}

// Subscribe registers a handler for a routing key pattern. Patterns follow
// topic-exchange rules: "*" matches one word and "#" matches zero or more.
func (b *InProcessEventBus) Subscribe(pattern string, handler Handler) {
	b.handlers.Register(pattern, handler)
}

// Publish dispatches to all matching handlers. Handler errors are logged
// and never returned so a faulty listener cannot fail the publisher.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	delivered, _ := b.handlers.Dispatch(ctx, routingKey, payload)
	b.logger.Debug("event dispatched", "routing_key", routingKey, "handlers", delivered)
	return nil
}

// Close is a no-op for the in-process bus.
func (b *InProcessEventBus) Close() error {
	return nil
}

// MatchRoutingKey reports whether key matches a topic pattern.
func MatchRoutingKey(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case "#":
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if matchWords(pattern[1:], key[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(key) == 0 {
				return false
			}
		default:
			if len(key) == 0 || key[0] != pattern[0] {
				return false
			}
		}
		pattern, key = pattern[1:], key[1:]
	}
	return len(key) == 0
}
