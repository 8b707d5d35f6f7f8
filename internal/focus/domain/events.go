package domain

import (
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/ogenrwotdaniel/focusflow/internal/shared/domain"
)

const (
	sessionAggregate = "FocusSession"
	treeAggregate    = "Tree"
)

// Routing keys for focus events.
const (
	RoutingSessionStarted    = "focus.session.started"
	RoutingSessionPaused     = "focus.session.paused"
	RoutingSessionResumed    = "focus.session.resumed"
	RoutingSessionCompleted  = "focus.session.completed"
	RoutingSessionAbandoned  = "focus.session.abandoned"
	RoutingBreakEndingSoon   = "focus.session.break_ending_soon"
	RoutingMotivation        = "focus.motivation.message"
	RoutingTreeGrowthChanged = "focus.tree.growth_changed"
)

// SessionEvent describes a session lifecycle transition.
type SessionEvent struct {
	sharedDomain.BaseEvent
	SessionID      uuid.UUID   `json:"session_id"`
	Kind           SessionKind `json:"kind"`
	PlannedMinutes int         `json:"planned_minutes"`
	StartTime      time.Time   `json:"start_time"`
	EndTime        *time.Time  `json:"end_time,omitempty"`
	Completed      bool        `json:"completed"`
	Interruptions  int         `json:"interruptions"`
	Rating         float64     `json:"productivity_rating,omitempty"`
	TreeID         *uuid.UUID  `json:"tree_id,omitempty"`
}

func newSessionEvent(s *Session, routingKey string, at time.Time) *SessionEvent {
	return &SessionEvent{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID, sessionAggregate, routingKey, at),
		SessionID:      s.ID,
		Kind:           s.Kind,
		PlannedMinutes: s.PlannedMinutes,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		Completed:      s.Completed,
		Interruptions:  s.Interruptions,
		Rating:         s.ProductivityRating,
		TreeID:         s.TreeID,
	}
}

// NewSessionStarted creates a started event.
func NewSessionStarted(s *Session, at time.Time) *SessionEvent {
	return newSessionEvent(s, RoutingSessionStarted, at)
}

// NewSessionPaused creates a paused event.
func NewSessionPaused(s *Session, at time.Time) *SessionEvent {
	return newSessionEvent(s, RoutingSessionPaused, at)
}

// NewSessionResumed creates a resumed event.
func NewSessionResumed(s *Session, at time.Time) *SessionEvent {
	return newSessionEvent(s, RoutingSessionResumed, at)
}

// NewSessionCompleted creates a completed event.
func NewSessionCompleted(s *Session, at time.Time) *SessionEvent {
	return newSessionEvent(s, RoutingSessionCompleted, at)
}

// NewSessionAbandoned creates an abandoned event.
func NewSessionAbandoned(s *Session, at time.Time) *SessionEvent {
	return newSessionEvent(s, RoutingSessionAbandoned, at)
}

// BreakEndingSoon is emitted once when a break nears its end.
type BreakEndingSoon struct {
	sharedDomain.BaseEvent
	SessionID        uuid.UUID `json:"session_id"`
	RemainingSeconds int       `json:"remaining_seconds"`
}

// NewBreakEndingSoon creates a BreakEndingSoon event.
func NewBreakEndingSoon(s *Session, remaining time.Duration, at time.Time) *BreakEndingSoon {
	return &BreakEndingSoon{
		BaseEvent:        sharedDomain.NewBaseEvent(s.ID, sessionAggregate, RoutingBreakEndingSoon, at),
		SessionID:        s.ID,
		RemainingSeconds: int(remaining.Round(time.Second) / time.Second),
	}
}

// MotivationalMessage carries encouragement text for the presentation layer.
type MotivationalMessage struct {
	sharedDomain.BaseEvent
	Text string `json:"text"`
}

// NewMotivationalMessage creates a MotivationalMessage event.
func NewMotivationalMessage(text string, at time.Time) *MotivationalMessage {
	return &MotivationalMessage{
		BaseEvent: sharedDomain.NewBaseEvent(uuid.Nil, sessionAggregate, RoutingMotivation, at),
		Text:      text,
	}
}

// TreeGrowthChanged is emitted on every persisted stage change.
type TreeGrowthChanged struct {
	sharedDomain.BaseEvent
	TreeID    uuid.UUID   `json:"tree_id"`
	SessionID uuid.UUID   `json:"session_id"`
	TreeType  TreeType    `json:"tree_type"`
	From      GrowthStage `json:"from"`
	To        GrowthStage `json:"to"`
}

// NewTreeGrowthChanged creates a TreeGrowthChanged event.
func NewTreeGrowthChanged(t *Tree, previous GrowthStage, at time.Time) *TreeGrowthChanged {
	return &TreeGrowthChanged{
		BaseEvent: sharedDomain.NewBaseEvent(t.ID, treeAggregate, RoutingTreeGrowthChanged, at),
		TreeID:    t.ID,
		SessionID: t.SessionID,
		TreeType:  t.Type,
		From:      previous,
		To:        t.Stage,
	}
}
