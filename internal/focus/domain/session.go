// Package domain holds the focus timer's entities: sessions, trees and the
// runtime timer snapshot.
package domain

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// SessionKind distinguishes focus intervals from breaks.
type SessionKind string

const (
	SessionKindFocus SessionKind = "focus"
	SessionKindBreak SessionKind = "break"
)

// IsValid reports whether k is a known kind.
func (k SessionKind) IsValid() bool {
	return k == SessionKindFocus || k == SessionKindBreak
}

// Rating bounds for a session's productivity rating.
const (
	MinRating = 0.0
	MaxRating = 10.0
)

// Errors
var (
	ErrInvalidDuration     = errors.New("planned duration must be positive")
	ErrInvalidKind         = errors.New("unknown session kind")
	ErrInvalidRating       = errors.New("productivity rating must be between 0 and 10")
	ErrSessionAlreadyEnded = errors.New("session already ended")
	ErrTreeOnBreak         = errors.New("only focus sessions can grow a tree")
	ErrTreeAlreadyLinked   = errors.New("session already has a tree")
)

// Session is one timed focus or break interval.
type Session struct {
	ID             uuid.UUID
	Kind           SessionKind
	PlannedMinutes int

	StartTime time.Time
	EndTime   *time.Time // nil while the session is open
	Completed bool

	Interruptions      int
	PausedDuration     time.Duration // total time spent paused
	ProductivityRating float64
	AudioTrack         *string
	TreeID             *uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession opens a session starting at start.
func NewSession(kind SessionKind, plannedMinutes int, start time.Time) (*Session, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}
	if plannedMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	return &Session{
		ID:             uuid.New(),
		Kind:           kind,
		PlannedMinutes: plannedMinutes,
		StartTime:      start,
		CreatedAt:      start,
		UpdatedAt:      start,
	}, nil
}

// WithAudioTrack records the background track played during the session.
func (s *Session) WithAudioTrack(track string) *Session {
	if track != "" {
		s.AudioTrack = &track
	}
	return s
}

// LinkTree attaches the tree grown by this session.
func (s *Session) LinkTree(treeID uuid.UUID) error {
	if s.Kind != SessionKindFocus {
		return ErrTreeOnBreak
	}
	if s.TreeID != nil {
		return ErrTreeAlreadyLinked
	}
	s.TreeID = &treeID
	return nil
}

// RecordInterruption counts a pause of the running session.
func (s *Session) RecordInterruption() {
	s.Interruptions++
}

// RecordPauses sets the total time the session spent paused.
func (s *Session) RecordPauses(total time.Duration) {
	if total < 0 {
		total = 0
	}
	s.PausedDuration = total
}

// Finish closes the session. An abandoned session keeps Completed false.
func (s *Session) Finish(at time.Time, completed bool) error {
	if s.EndTime != nil {
		return ErrSessionAlreadyEnded
	}
	s.EndTime = &at
	s.Completed = completed
	s.UpdatedAt = at
	return nil
}

// Rate sets a user-reported productivity rating.
func (s *Session) Rate(rating float64) error {
	if math.IsNaN(rating) || rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	s.ProductivityRating = rating
	s.UpdatedAt = time.Now()
	return nil
}

// DeriveRating fills in a system rating for a session nobody rated.
// Completed sessions start from 10 and lose 1.5 per interruption down to 3;
// abandoned ones score half a point per 10% of progress.
func (s *Session) DeriveRating(progress float64) {
	if s.ProductivityRating > 0 {
		return
	}
	if s.Completed {
		s.ProductivityRating = math.Max(3, MaxRating-1.5*float64(s.Interruptions))
		return
	}
	s.ProductivityRating = math.Round(clamp01(progress)*5*10) / 10
}

// IsOpen reports whether the session is still running or paused.
func (s *Session) IsOpen() bool {
	return s.EndTime == nil
}

// PlannedDuration returns the planned length.
func (s *Session) PlannedDuration() time.Duration {
	return time.Duration(s.PlannedMinutes) * time.Minute
}

// ActualDuration is end minus start, zero while open.
func (s *Session) ActualDuration() time.Duration {
	if s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// FocusedDuration is the running time of a closed session: wall time minus
// pauses, never more than planned.
func (s *Session) FocusedDuration() time.Duration {
	focused := s.ActualDuration() - s.PausedDuration
	switch {
	case focused < 0:
		return 0
	case focused > s.PlannedDuration():
		return s.PlannedDuration()
	}
	return focused
}

// FocusMinutes is the focus time this session contributes to daily totals:
// whole focused minutes of a closed focus session. Breaks and open sessions
// contribute nothing.
func (s *Session) FocusMinutes() int {
	if s.Kind != SessionKindFocus || s.EndTime == nil {
		return 0
	}
	return int(s.FocusedDuration() / time.Minute)
}

// HasRating reports whether a rating was recorded or derived.
func (s *Session) HasRating() bool {
	return s.ProductivityRating > 0
}

// Clone returns a copy that shares no pointers with s.
func (s *Session) Clone() *Session {
	c := *s
	if s.EndTime != nil {
		end := *s.EndTime
		c.EndTime = &end
	}
	if s.AudioTrack != nil {
		track := *s.AudioTrack
		c.AudioTrack = &track
	}
	if s.TreeID != nil {
		id := *s.TreeID
		c.TreeID = &id
	}
	return &c
}

func clamp01(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
