package queries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/focus/infrastructure/persistence"
)

func storeSession(t *testing.T, store domain.SessionStore, kind domain.SessionKind, start time.Time, minutes int, completed bool) *domain.Session {
	t.Helper()
	s, err := domain.NewSession(kind, minutes, start)
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), s))
	require.NoError(t, s.Finish(start.Add(time.Duration(minutes)*time.Minute), completed))
	if completed {
		s.DeriveRating(1)
	}
	require.NoError(t, store.Update(context.Background(), s))
	return s
}

func TestListSessionsHandler_Handle(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemorySessionRepository()
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	focus := storeSession(t, store, domain.SessionKindFocus, day, 25, true)
	storeSession(t, store, domain.SessionKindBreak, day.Add(25*time.Minute), 5, true)
	storeSession(t, store, domain.SessionKindFocus, day.Add(time.Hour), 10, false)
	storeSession(t, store, domain.SessionKindFocus, day.AddDate(0, 0, -3), 25, true)

	handler := NewListSessionsHandler(store)

	t.Run("completed sessions in range", func(t *testing.T) {
		sessions, err := handler.Handle(ctx, ListSessionsQuery{From: day, To: day.AddDate(0, 0, 1)})
		require.NoError(t, err)
		require.Len(t, sessions, 2)

		first := sessions[0]
		assert.Equal(t, focus.ID, first.ID)
		assert.Equal(t, "focus", first.Kind)
		assert.Equal(t, 25, first.FocusMinutes)
		assert.Equal(t, day.Add(25*time.Minute), first.EndTime)
		require.NotNil(t, first.ProductivityRating)
		assert.Equal(t, "break", sessions[1].Kind)
		assert.Zero(t, sessions[1].FocusMinutes)
	})

	t.Run("abandoned and kind filter", func(t *testing.T) {
		sessions, err := handler.Handle(ctx, ListSessionsQuery{
			From:             day,
			To:               day.AddDate(0, 0, 1),
			Kind:             "focus",
			IncludeAbandoned: true,
		})
		require.NoError(t, err)
		require.Len(t, sessions, 2)
		assert.False(t, sessions[1].Completed)
		assert.Equal(t, 10, sessions[1].FocusMinutes)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := handler.Handle(ctx, ListSessionsQuery{Kind: "nap"})
		assert.ErrorIs(t, err, domain.ErrInvalidKind)
	})
}
