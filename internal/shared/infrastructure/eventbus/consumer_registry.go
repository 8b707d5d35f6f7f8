package eventbus

import (
	"context"
	"log/slog"
	"sync"
)

// HandlerRegistry routes messages to handlers by topic pattern.
type HandlerRegistry struct {
	mu     sync.RWMutex
	subs   []subscription
	logger *slog.Logger
}

// NewHandlerRegistry creates an empty registry.
func NewHandlerRegistry(logger *slog.Logger) *HandlerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &HandlerRegistry{logger: logger}
}

// Register adds a handler for a routing key pattern.
func (r *HandlerRegistry) Register(pattern string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs = append(r.subs, subscription{pattern: pattern, handler: handler})
	r.logger.Debug("registered handler", "pattern", pattern)
}

// Patterns returns the distinct registered patterns in registration order.
func (r *HandlerRegistry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(r.subs))
	patterns := make([]string, 0, len(r.subs))
	for _, sub := range r.subs {
		if !seen[sub.pattern] {
			seen[sub.pattern] = true
			patterns = append(patterns, sub.pattern)
		}
	}
	return patterns
}

// Dispatch calls every handler whose pattern matches routingKey, in
// registration order. A failing handler does not stop the others; the last
// error is returned with the number of handlers called.
func (r *HandlerRegistry) Dispatch(ctx context.Context, routingKey string, payload []byte) (int, error) {
	r.mu.RLock()
	subs := make([]subscription, len(r.subs))
	copy(subs, r.subs)
	r.mu.RUnlock()

	delivered := 0
	var lastErr error
	for _, sub := range subs {
		if !MatchRoutingKey(sub.pattern, routingKey) {
			continue
		}
		delivered++
		if err := sub.handler(ctx, routingKey, payload); err != nil {
			r.logger.Error("event handler failed",
				"routing_key", routingKey,
				"pattern", sub.pattern,
				"error", err,
			)
			lastErr = err
		}
	}
	if delivered == 0 {
		r.logger.Debug("no handlers for routing key", "routing_key", routingKey)
	}
	return delivered, lastErr
}

// Count returns the number of registered handlers.
func (r *HandlerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
