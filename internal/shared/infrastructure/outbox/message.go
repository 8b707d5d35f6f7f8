// Package outbox stores broker-bound events in the database and relays
// them to the broker, so events raised while the broker is down are
// delivered once it is back.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message is one event waiting in the outbox.
type Message struct {
	ID               int64
	EventID          uuid.UUID
	RoutingKey       string
	Payload          json.RawMessage
	CreatedAt        time.Time
	PublishedAt      *time.Time
	NextRetryAt      *time.Time
	RetryCount       int
	LastError        *string
	DeadLetteredAt   *time.Time
	DeadLetterReason *string
}

// NewMessage wraps an encoded event. The event ID is read from the
// payload's event_id field; payloads without one get a fresh ID.
func NewMessage(routingKey string, payload []byte, at time.Time) *Message {
	var envelope struct {
		EventID uuid.UUID `json:"event_id"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.EventID == uuid.Nil {
		envelope.EventID = uuid.New()
	}

	return &Message{
		EventID:    envelope.EventID,
		RoutingKey: routingKey,
		Payload:    append(json.RawMessage(nil), payload...),
		CreatedAt:  at.UTC(),
	}
}

// IsPublished returns true if the message has been relayed.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// CanRetry returns true if another failure still leaves the message in
// the queue.
func (m *Message) CanRetry(maxRetries int) bool {
	return m.RetryCount+1 < maxRetries
}
