package events

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogenrwotdaniel/focusflow/adapter/cli"
	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/eventbus"
)

// replayConsumer delivers fixed messages through the registry and returns.
type replayConsumer struct {
	handlers *eventbus.HandlerRegistry
	messages map[string][]byte
	keys     []string
	closed   bool
}

func (c *replayConsumer) Subscribe(pattern string, handler eventbus.Handler) {
	c.handlers.Register(pattern, handler)
}

func (c *replayConsumer) Start(ctx context.Context) error {
	for _, key := range c.keys {
		if _, err := c.handlers.Dispatch(ctx, key, c.messages[key]); err != nil {
			return err
		}
	}
	return nil
}

func (c *replayConsumer) Close() error {
	c.closed = true
	return nil
}

func TestTailCmd_NoApp(t *testing.T) {
	cli.SetApp(nil)

	tailCmd.SetContext(context.Background())

	err := tailCmd.RunE(tailCmd, []string{})
	assert.EqualError(t, err, "event source not available")
}

func TestTailCmd_NoBroker(t *testing.T) {
	cli.SetApp(&cli.App{})
	defer cli.SetApp(nil)

	tailCmd.SetContext(context.Background())

	err := tailCmd.RunE(tailCmd, []string{})
	assert.EqualError(t, err, "no event bus configured: set EVENTBUS_URL")
}

func TestTailCmd_RendersEvents(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	session, err := domain.NewSession(domain.SessionKindFocus, 25, at)
	require.NoError(t, err)

	started, err := json.Marshal(domain.NewSessionStarted(session, at))
	require.NoError(t, err)
	motivation, err := json.Marshal(domain.NewMotivationalMessage("Deep work starts now.", at))
	require.NoError(t, err)

	fake := &replayConsumer{
		handlers: eventbus.NewHandlerRegistry(nil),
		messages: map[string][]byte{
			domain.RoutingSessionStarted: started,
			domain.RoutingMotivation:     motivation,
			"audit.unrelated":            []byte(`{}`),
		},
		keys: []string{domain.RoutingSessionStarted, domain.RoutingMotivation, "audit.unrelated"},
	}

	var gotCfg eventbus.ConsumerConfig
	orig := newConsumer
	newConsumer = func(cfg eventbus.ConsumerConfig) (eventbus.Consumer, error) {
		gotCfg = cfg
		return fake, nil
	}
	defer func() { newConsumer = orig }()

	app := &cli.App{}
	app.SetEventSource(eventbus.ConsumerConfig{URL: "amqp://localhost", Exchange: eventbus.DefaultExchange})
	cli.SetApp(app)
	defer cli.SetApp(nil)

	tailQueue = "focusflow.audit"
	defer func() { tailQueue = "" }()

	var out bytes.Buffer
	tailCmd.SetOut(&out)
	tailCmd.SetErr(&bytes.Buffer{})
	tailCmd.SetContext(context.Background())

	require.NoError(t, tailCmd.RunE(tailCmd, []string{}))
	assert.Equal(t, "focusflow.audit", gotCfg.QueueName)
	assert.Equal(t, "amqp://localhost", gotCfg.URL)
	assert.Equal(t, "▶ focus session started (25 min)\n💬 Deep work starts now.\n", out.String())
	assert.True(t, fake.closed)

}
