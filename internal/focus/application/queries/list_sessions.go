package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
)

// SessionDTO is a data transfer object for closed sessions.
type SessionDTO struct {
	ID                 uuid.UUID  `json:"id"`
	Kind               string     `json:"kind"`
	PlannedMinutes     int        `json:"planned_minutes"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	Completed          bool       `json:"completed"`
	FocusMinutes       int        `json:"focus_minutes"`
	Interruptions      int        `json:"interruptions"`
	ProductivityRating *float64   `json:"productivity_rating,omitempty"`
	AudioTrack         string     `json:"audio_track,omitempty"`
	TreeID             *uuid.UUID `json:"tree_id,omitempty"`
}

// ListSessionsQuery selects closed sessions that started in [From, To).
type ListSessionsQuery struct {
	From time.Time
	To   time.Time
	Kind string // focus or break; empty for both

	IncludeAbandoned bool
}

// ListSessionsHandler lists session history.
type ListSessionsHandler struct {
	sessionRepo domain.SessionStore
}

// NewListSessionsHandler creates a new ListSessionsHandler.
func NewListSessionsHandler(sessionRepo domain.SessionStore) *ListSessionsHandler {
	return &ListSessionsHandler{sessionRepo: sessionRepo}
}

// Handle returns the sessions oldest first.
func (h *ListSessionsHandler) Handle(ctx context.Context, query ListSessionsQuery) ([]SessionDTO, error) {
	filter := domain.SessionFilter{
		From:             query.From,
		To:               query.To,
		IncludeAbandoned: query.IncludeAbandoned,
	}
	if query.Kind != "" {
		kind := domain.SessionKind(query.Kind)
		if !kind.IsValid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidKind, query.Kind)
		}
		filter.Kinds = []domain.SessionKind{kind}
	}

	sessions, err := h.sessionRepo.QueryCompleted(ctx, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]SessionDTO, 0, len(sessions))
	for _, s := range sessions {
		dto := SessionDTO{
			ID:             s.ID,
			Kind:           string(s.Kind),
			PlannedMinutes: s.PlannedMinutes,
			StartTime:      s.StartTime,
			EndTime:        *s.EndTime,
			Completed:      s.Completed,
			FocusMinutes:   s.FocusMinutes(),
			Interruptions:  s.Interruptions,
			TreeID:         s.TreeID,
		}
		if s.HasRating() {
			rating := s.ProductivityRating
			dto.ProductivityRating = &rating
		}
		if s.AudioTrack != nil {
			dto.AudioTrack = *s.AudioTrack
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}
