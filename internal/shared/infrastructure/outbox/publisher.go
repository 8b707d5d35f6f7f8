package outbox

import (
	"context"
	"time"
)

// Publisher is an eventbus.Publisher that stores messages in the outbox
// instead of sending them. A Processor relays them.
type Publisher struct {
	repo Repository
	now  func() time.Time
}

// NewPublisher creates a publisher writing to repo.
func NewPublisher(repo Repository) *Publisher {
	return &Publisher{repo: repo, now: time.Now}
}

// Publish stores the message for relay.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	return p.repo.Save(ctx, NewMessage(routingKey, payload, p.now()))
}

// Close is a no-op; the processor owns the broker connection.
func (p *Publisher) Close() error {
	return nil
}
