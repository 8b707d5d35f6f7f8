package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRoutingKey(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"focus.session.completed", "focus.session.completed", true},
		{"focus.session.*", "focus.session.completed", true},
		{"focus.*", "focus.session.completed", false},
		{"focus.#", "focus.session.completed", true},
		{"focus.#", "focus", true},
		{"#", "tree.growth.changed", true},
		{"#.completed", "focus.session.completed", true},
		{"focus.session.started", "focus.session.completed", false},
		{"focus.session.*.x", "focus.session.started", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"->"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchRoutingKey(tt.pattern, tt.key))
		})
	}
}

func TestInProcessEventBus(t *testing.T) {
	t.Run("delivers to matching handlers in order", func(t *testing.T) {
		bus := NewInProcessEventBus(nil)
		var got []string
		bus.Subscribe("focus.session.*", func(ctx context.Context, key string, payload []byte) error {
			got = append(got, "session:"+key)
			return nil
		})
		bus.Subscribe("#", func(ctx context.Context, key string, payload []byte) error {
			got = append(got, "all:"+string(payload))
			return nil
		})
		bus.Subscribe("focus.tree.#", func(ctx context.Context, key string, payload []byte) error {
			got = append(got, "tree")
			return nil
		})

		require.NoError(t, bus.Publish(context.Background(), "focus.session.completed", []byte(`{}`)))

		assert.Equal(t, []string{"session:focus.session.completed", "all:{}"}, got)
	})

	t.Run("handler errors do not fail publish", func(t *testing.T) {
		bus := NewInProcessEventBus(nil)
		calls := 0
		bus.Subscribe("#", func(ctx context.Context, key string, payload []byte) error {
			calls++
			return errors.New("listener broke")
		})
		bus.Subscribe("#", func(ctx context.Context, key string, payload []byte) error {
			calls++
			return nil
		})

		assert.NoError(t, bus.Publish(context.Background(), "focus.session.started", nil))
		assert.Equal(t, 2, calls)
	})
}

type recordingPublisher struct {
	keys   []string
	err    error
	closed bool
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.keys = append(p.keys, routingKey)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func TestFanOut(t *testing.T) {
	failing := &recordingPublisher{err: errors.New("broker down")}
	ok := &recordingPublisher{}
	fan := FanOut{failing, ok}

	err := fan.Publish(context.Background(), "focus.session.started", nil)

	assert.EqualError(t, err, "broker down")
	assert.Equal(t, []string{"focus.session.started"}, ok.keys, "later publishers still receive the message")

	require.NoError(t, fan.Close())
	assert.True(t, failing.closed)
	assert.True(t, ok.closed)
}

func TestNewPublisher(t *testing.T) {
	t.Run("empty URL gives noop", func(t *testing.T) {
		p, err := NewPublisher("", "", nil)
		require.NoError(t, err)
		assert.IsType(t, &NoopPublisher{}, p)
		assert.NoError(t, p.Publish(context.Background(), "x", nil))
	})

	t.Run("unknown scheme is rejected", func(t *testing.T) {
		_, err := NewPublisher("kafka://localhost:9092", "", nil)
		assert.Error(t, err)
	})
}
