package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	focusDomain "github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
)

// base is Monday 2 March 2026, midnight UTC.
var base = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(day, hour int) time.Time {
	return base.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
}

type sessionOpt func(*focusDomain.Session)

func withTrack(track string) sessionOpt {
	return func(s *focusDomain.Session) { s.AudioTrack = &track }
}

func withInterruptions(n int) sessionOpt {
	return func(s *focusDomain.Session) { s.Interruptions = n }
}

func abandoned() sessionOpt {
	return func(s *focusDomain.Session) {
		s.Completed = false
		end := s.StartTime.Add(time.Duration(s.PlannedMinutes) * time.Minute / 2)
		s.EndTime = &end
	}
}

// focus returns a closed, completed focus session lasting its planned time.
func focus(start time.Time, minutes int, rating float64, opts ...sessionOpt) *focusDomain.Session {
	end := start.Add(time.Duration(minutes) * time.Minute)
	s := &focusDomain.Session{
		ID:                 uuid.New(),
		Kind:               focusDomain.SessionKindFocus,
		PlannedMinutes:     minutes,
		StartTime:          start,
		EndTime:            &end,
		Completed:          true,
		ProductivityRating: rating,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func fixedClock(t time.Time) focusDomain.Clock {
	return focusDomain.ClockFunc(func() time.Time { return t })
}

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) Create(ctx context.Context, session *focusDomain.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *mockSessionStore) Update(ctx context.Context, session *focusDomain.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *mockSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*focusDomain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*focusDomain.Session), args.Error(1)
}

func (m *mockSessionStore) QueryCompleted(ctx context.Context, filter focusDomain.SessionFilter) ([]*focusDomain.Session, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*focusDomain.Session), args.Error(1)
}

func (m *mockSessionStore) QueryByDateRange(ctx context.Context, start, end time.Time) ([]*focusDomain.Session, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*focusDomain.Session), args.Error(1)
}
