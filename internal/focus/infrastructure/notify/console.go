package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/eventbus"
)

// Console prints focus events as one-line messages. On the in-process bus
// it shows the running timer's notifications; on a broker consumer it
// shows those of another process.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Subscriber is an in-process bus or a broker consumer.
type Subscriber interface {
	Subscribe(pattern string, handler eventbus.Handler)
}

// Subscribe registers the console for every focus event.
func (c *Console) Subscribe(bus Subscriber) {
	bus.Subscribe(FocusEvents, c.Handle)
}

// FocusEvents matches every routing key the notifier publishes.
const FocusEvents = "focus.#"

// Handle renders one event. Unknown routing keys are ignored.
func (c *Console) Handle(_ context.Context, routingKey string, payload []byte) error {
	line, err := render(routingKey, payload)
	if err != nil || line == "" {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = fmt.Fprintln(c.out, line)
	return err
}

func render(routingKey string, payload []byte) (string, error) {
	switch routingKey {
	case domain.RoutingSessionStarted:
		var e domain.SessionEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return "", err
		}
		return fmt.Sprintf("▶ %s session started (%d min)", e.Kind, e.PlannedMinutes), nil
	case domain.RoutingSessionPaused:
		return "⏸ paused", nil
	case domain.RoutingSessionResumed:
		return "▶ resumed", nil
	case domain.RoutingSessionCompleted:
		var e domain.SessionEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return "", err
		}
		if e.Kind == domain.SessionKindBreak {
			return "✔ break over, ready to focus", nil
		}
		return fmt.Sprintf("✔ focus session complete (rating %.1f)", e.Rating), nil
	case domain.RoutingSessionAbandoned:
		return "✖ session stopped early", nil
	case domain.RoutingBreakEndingSoon:
		var e domain.BreakEndingSoon
		if err := json.Unmarshal(payload, &e); err != nil {
			return "", err
		}
		return fmt.Sprintf("⏰ break ends in %ds", e.RemainingSeconds), nil
	case domain.RoutingTreeGrowthChanged:
		var e domain.TreeGrowthChanged
		if err := json.Unmarshal(payload, &e); err != nil {
			return "", err
		}
		if e.To == domain.StageWithered {
			return fmt.Sprintf("🥀 your %s withered", e.TreeType), nil
		}
		return fmt.Sprintf("🌱 your %s is now a %s", e.TreeType, e.To), nil
	case domain.RoutingMotivation:
		var e domain.MotivationalMessage
		if err := json.Unmarshal(payload, &e); err != nil {
			return "", err
		}
		return "💬 " + e.Text, nil
	default:
		return "", nil
	}
}
