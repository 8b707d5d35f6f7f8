package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/database"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/database/sqlite"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/migrations"
	"github.com/ogenrwotdaniel/focusflow/internal/shared/infrastructure/resilience"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type stores struct {
	sessions domain.SessionStore
	trees    domain.TreeStore
}

func newSQLiteStores(t *testing.T) stores {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "focus.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))

	sessions, trees, err := NewStores(conn)
	require.NoError(t, err)
	return stores{sessions: sessions, trees: trees}
}

func newMemoryStores(*testing.T) stores {
	return stores{sessions: NewMemorySessionRepository(), trees: NewMemoryTreeRepository()}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s stores)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteStores(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, newMemoryStores(t)) })
}

func closedSession(t *testing.T, kind domain.SessionKind, start time.Time, minutes int, completed bool) *domain.Session {
	t.Helper()
	s, err := domain.NewSession(kind, minutes, start)
	require.NoError(t, err)
	require.NoError(t, s.Finish(start.Add(time.Duration(minutes)*time.Minute), completed))
	s.DeriveRating(0.5)
	return s
}

func TestSessionStore_RoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s stores) {
		ctx := context.Background()

		session, err := domain.NewSession(domain.SessionKindFocus, 25, base.Add(123456789*time.Nanosecond))
		require.NoError(t, err)
		session.WithAudioTrack("rain")
		require.NoError(t, s.sessions.Create(ctx, session))

		got, err := s.sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.IsOpen())
		assert.Equal(t, domain.SessionKindFocus, got.Kind)
		assert.Equal(t, 25, got.PlannedMinutes)
		assert.True(t, session.StartTime.Equal(got.StartTime))
		require.NotNil(t, got.AudioTrack)
		assert.Equal(t, "rain", *got.AudioTrack)
		assert.Nil(t, got.TreeID)

		tree := domain.NewTree(session.ID, domain.TreeTypePine, session.StartTime)
		require.NoError(t, s.trees.Create(ctx, tree))
		require.NoError(t, session.LinkTree(tree.ID))
		session.RecordInterruption()
		session.RecordPauses(3*time.Minute + 1500*time.Millisecond)
		require.NoError(t, session.Finish(base.Add(28*time.Minute), true))
		session.DeriveRating(1)
		require.NoError(t, s.sessions.Update(ctx, session))

		got, err = s.sessions.GetByID(ctx, session.ID)
		require.NoError(t, err)
		assert.False(t, got.IsOpen())
		assert.True(t, got.Completed)
		assert.Equal(t, 1, got.Interruptions)
		assert.Equal(t, 3*time.Minute+1500*time.Millisecond, got.PausedDuration)
		assert.Equal(t, 24, got.FocusMinutes())
		assert.InDelta(t, 8.5, got.ProductivityRating, 1e-9)
		require.NotNil(t, got.TreeID)
		assert.Equal(t, tree.ID, *got.TreeID)
	})
}

func TestSessionStore_GetByIDMissing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s stores) {
		got, err := s.sessions.GetByID(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestSessionStore_UpdateMissing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s stores) {
		session := closedSession(t, domain.SessionKindFocus, base, 25, true)
		err := s.sessions.Update(context.Background(), session)
		assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
	})
}

func TestSessionStore_QueryCompleted(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s stores) {
		ctx := context.Background()

		focusDone := closedSession(t, domain.SessionKindFocus, base, 25, true)
		breakDone := closedSession(t, domain.SessionKindBreak, base.Add(30*time.Minute), 5, true)
		abandoned := closedSession(t, domain.SessionKindFocus, base.Add(time.Hour), 25, false)
		nextDay := closedSession(t, domain.SessionKindFocus, base.Add(24*time.Hour), 50, true)
		open, err := domain.NewSession(domain.SessionKindFocus, 25, base.Add(2*time.Hour))
		require.NoError(t, err)

		for _, session := range []*domain.Session{nextDay, abandoned, focusDone, open, breakDone} {
			require.NoError(t, s.sessions.Create(ctx, session))
		}

		all, err := s.sessions.QueryCompleted(ctx, domain.SessionFilter{})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{focusDone.ID, breakDone.ID, nextDay.ID}, ids(all))

		focusOnly, err := s.sessions.QueryCompleted(ctx, domain.SessionFilter{
			Kinds: []domain.SessionKind{domain.SessionKindFocus},
		})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{focusDone.ID, nextDay.ID}, ids(focusOnly))

		withAbandoned, err := s.sessions.QueryCompleted(ctx, domain.SessionFilter{
			Kinds:            []domain.SessionKind{domain.SessionKindFocus},
			IncludeAbandoned: true,
		})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{focusDone.ID, abandoned.ID, nextDay.ID}, ids(withAbandoned))

		firstDay, err := s.sessions.QueryCompleted(ctx, domain.SessionFilter{
			From: base,
			To:   base.Add(24 * time.Hour),
		})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{focusDone.ID, breakDone.ID}, ids(firstDay))

		limited, err := s.sessions.QueryCompleted(ctx, domain.SessionFilter{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{focusDone.ID}, ids(limited))
	})
}

func TestSessionStore_QueryByDateRange(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s stores) {
		ctx := context.Background()

		before := closedSession(t, domain.SessionKindFocus, base.Add(-time.Minute), 25, true)
		atStart := closedSession(t, domain.SessionKindFocus, base, 25, false)
		open, err := domain.NewSession(domain.SessionKindBreak, 5, base.Add(time.Hour))
		require.NoError(t, err)
		atEnd := closedSession(t, domain.SessionKindFocus, base.Add(2*time.Hour), 25, true)

		for _, session := range []*domain.Session{before, atStart, open, atEnd} {
			require.NoError(t, s.sessions.Create(ctx, session))
		}

		got, err := s.sessions.QueryByDateRange(ctx, base, base.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{atStart.ID, open.ID}, ids(got))
	})
}

func TestTreeStore_Lifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s stores) {
		ctx := context.Background()

		session := closedSession(t, domain.SessionKindFocus, base, 25, true)
		require.NoError(t, s.sessions.Create(ctx, session))

		tree := domain.NewTree(session.ID, domain.TreeTypeSakura, base)
		require.NoError(t, s.trees.Create(ctx, tree))

		assert.Error(t, s.trees.Create(ctx, domain.NewTree(session.ID, domain.TreeTypeOak, base)),
			"a session grows at most one tree")

		tree.Grow(domain.StageSapling, base.Add(10*time.Minute))
		require.NoError(t, tree.Complete(base.Add(25*time.Minute)))
		require.NoError(t, s.trees.Update(ctx, tree))

		got, err := s.trees.GetBySessionID(ctx, session.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, tree.ID, got.ID)
		assert.Equal(t, domain.TreeTypeSakura, got.Type)
		assert.Equal(t, domain.StageMature, got.Stage)
		require.NotNil(t, got.CompletedAt)
		assert.True(t, base.Add(25*time.Minute).Equal(*got.CompletedAt))

		byID, err := s.trees.GetByID(ctx, tree.ID)
		require.NoError(t, err)
		assert.Equal(t, tree.ID, byID.ID)

		missing, err := s.trees.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, missing)

		err = s.trees.Update(ctx, domain.NewTree(uuid.New(), domain.TreeTypeOak, base))
		assert.True(t, errors.Is(err, domain.ErrTreeNotFound))
	})
}

func TestTreeStore_ListAndCount(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s stores) {
		ctx := context.Background()

		var planted []*domain.Tree
		for i, stage := range []domain.GrowthStage{domain.StageMature, domain.StageWithered, domain.StageMature} {
			start := base.Add(time.Duration(i) * time.Hour)
			session := closedSession(t, domain.SessionKindFocus, start, 25, stage == domain.StageMature)
			require.NoError(t, s.sessions.Create(ctx, session))

			tree := domain.NewTree(session.ID, domain.TreeTypeOak, start)
			if stage == domain.StageMature {
				require.NoError(t, tree.Complete(start.Add(25*time.Minute)))
			} else {
				require.NoError(t, tree.Wither(start.Add(5*time.Minute)))
			}
			require.NoError(t, s.trees.Create(ctx, tree))
			planted = append(planted, tree)
		}

		listed, err := s.trees.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, planted[2].ID, listed[0].ID)
		assert.Equal(t, planted[1].ID, listed[1].ID)

		counts, err := s.trees.CountByStage(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, counts[domain.StageMature])
		assert.Equal(t, 1, counts[domain.StageWithered])
		assert.Zero(t, counts[domain.StageSeed])
	})
}

func TestBreakerSessionStore_OpensAfterFailures(t *testing.T) {
	ctx := context.Background()
	breaker := resilience.NewBreaker("sessions", resilience.BreakerConfig{
		MaxRequests:      1,
		Timeout:          time.Hour,
		FailureThreshold: 2,
	}, nil, nil)
	store := NewBreakerSessionStore(NewMemorySessionRepository(), breaker)

	missing := closedSession(t, domain.SessionKindFocus, base, 25, true)
	for i := 0; i < 2; i++ {
		err := store.Update(ctx, missing)
		assert.True(t, errors.Is(err, domain.ErrSessionNotFound))
	}

	err := store.Create(ctx, missing)
	assert.True(t, errors.Is(err, resilience.ErrCircuitOpen))
	assert.Equal(t, "open", breaker.State())
}

func TestBreakerTreeStore_PassesThrough(t *testing.T) {
	ctx := context.Background()
	breaker := resilience.NewBreaker("trees", resilience.DefaultBreakerConfig(), nil, nil)
	store := NewBreakerTreeStore(NewMemoryTreeRepository(), breaker)

	tree := domain.NewTree(uuid.New(), domain.TreeTypeMaple, base)
	require.NoError(t, store.Create(ctx, tree))

	got, err := store.GetBySessionID(ctx, tree.SessionID)
	require.NoError(t, err)
	assert.Equal(t, tree.ID, got.ID)

	none, err := store.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)

	counts, err := store.CountByStage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.StageSeed])
}

func TestTimeLayoutOrdersLexically(t *testing.T) {
	early := formatTime(time.Date(2026, 3, 2, 9, 0, 0, 5, time.UTC))
	late := formatTime(time.Date(2026, 3, 2, 9, 0, 0, 40, time.UTC))
	assert.Less(t, early, late)

	parsed, err := parseTime(late)
	require.NoError(t, err)
	assert.Equal(t, 40, parsed.Nanosecond())

	legacy, err := parseTime("2026-03-02T10:00:00+01:00")
	require.NoError(t, err)
	assert.True(t, legacy.Equal(base))
}

func ids(sessions []*domain.Session) []uuid.UUID {
	out := make([]uuid.UUID, len(sessions))
	for i, s := range sessions {
		out[i] = s.ID
	}
	return out
}
