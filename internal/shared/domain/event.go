// Package domain holds building blocks shared by the bounded contexts.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents something that happened in the domain.
type DomainEvent interface {
	EventID() uuid.UUID
	AggregateID() uuid.UUID
	AggregateType() string
	RoutingKey() string
	OccurredAt() time.Time
	CorrelationID() string
}

// BaseEvent provides common event functionality. Fields are exported so
// events serialize to JSON for the event bus.
type BaseEvent struct {
	ID          uuid.UUID `json:"event_id"`
	Aggregate   uuid.UUID `json:"aggregate_id"`
	Type        string    `json:"aggregate_type"`
	Key         string    `json:"routing_key"`
	At          time.Time `json:"occurred_at"`
	Correlation string    `json:"correlation_id,omitempty"`
}

// NewBaseEvent creates a new base event stamped at occurredAt.
func NewBaseEvent(aggregateID uuid.UUID, aggregateType, routingKey string, occurredAt time.Time) BaseEvent {
	return BaseEvent{
		ID:        uuid.New(),
		Aggregate: aggregateID,
		Type:      aggregateType,
		Key:       routingKey,
		At:        occurredAt.UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID     { return e.ID }
func (e BaseEvent) AggregateID() uuid.UUID { return e.Aggregate }
func (e BaseEvent) AggregateType() string  { return e.Type }
func (e BaseEvent) RoutingKey() string     { return e.Key }
func (e BaseEvent) OccurredAt() time.Time  { return e.At }
func (e BaseEvent) CorrelationID() string  { return e.Correlation }

// SetCorrelationID ties the event to the command that caused it.
func (e *BaseEvent) SetCorrelationID(id string) {
	e.Correlation = id
}
