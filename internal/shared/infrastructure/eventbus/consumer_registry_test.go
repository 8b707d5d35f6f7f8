package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	keys []string
	err  error
}

func (h *recordingHandler) Handle(_ context.Context, key string, _ []byte) error {
	h.keys = append(h.keys, key)
	return h.err
}

func newTestRegistry() *HandlerRegistry {
	return NewHandlerRegistry(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func TestHandlerRegistry_Register(t *testing.T) {
	registry := newTestRegistry()
	h := &recordingHandler{}

	registry.Register("focus.session.*", h.Handle)
	registry.Register("focus.tree.#", h.Handle)
	registry.Register("focus.session.*", h.Handle)

	assert.Equal(t, 3, registry.Count())
	assert.Equal(t, []string{"focus.session.*", "focus.tree.#"}, registry.Patterns())
}

func TestHandlerRegistry_Dispatch(t *testing.T) {
	registry := newTestRegistry()
	sessions := &recordingHandler{}
	trees := &recordingHandler{}
	registry.Register("focus.session.*", sessions.Handle)
	registry.Register("focus.tree.#", trees.Handle)

	n, err := registry.Dispatch(context.Background(), "focus.session.completed", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"focus.session.completed"}, sessions.keys)
	assert.Empty(t, trees.keys)
}

func TestHandlerRegistry_DispatchNoHandlers(t *testing.T) {
	registry := newTestRegistry()

	n, err := registry.Dispatch(context.Background(), "focus.session.started", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHandlerRegistry_DispatchContinuesAfterError(t *testing.T) {
	registry := newTestRegistry()
	failing := &recordingHandler{err: errors.New("render failed")}
	ok := &recordingHandler{}
	registry.Register("#", failing.Handle)
	registry.Register("focus.#", ok.Handle)

	n, err := registry.Dispatch(context.Background(), "focus.tree.growth_changed", nil)
	assert.EqualError(t, err, "render failed")
	assert.Equal(t, 2, n)
	assert.Len(t, failing.keys, 1)
	assert.Len(t, ok.keys, 1)
}

func TestNewConsumer(t *testing.T) {
	t.Run("empty URL", func(t *testing.T) {
		_, err := NewConsumer(ConsumerConfig{})
		assert.ErrorIs(t, err, ErrNoBroker)
	})

	t.Run("unknown scheme", func(t *testing.T) {
		_, err := NewConsumer(ConsumerConfig{URL: "kafka://localhost:9092"})
		assert.ErrorContains(t, err, "unsupported event bus URL scheme")
	})
}

func TestNATSConsumer_RoutingKey(t *testing.T) {
	c := &NATSConsumer{prefix: DefaultExchange}

	key, ok := c.RoutingKey("focusflow.events.focus.session.completed")
	assert.True(t, ok)
	assert.Equal(t, "focus.session.completed", key)

	_, ok = c.RoutingKey("other.events.focus.session.completed")
	assert.False(t, ok)

	_, ok = c.RoutingKey("focusflow.events.")
	assert.False(t, ok)
}
