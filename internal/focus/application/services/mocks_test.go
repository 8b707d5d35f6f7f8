package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
)

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionStore) Update(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionStore) QueryCompleted(ctx context.Context, filter domain.SessionFilter) ([]*domain.Session, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*domain.Session), args.Error(1)
}

func (m *mockSessionStore) QueryByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Session, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).([]*domain.Session), args.Error(1)
}

// written returns the sessions passed to method, in call order.
func (m *mockSessionStore) written(method string) []*domain.Session {
	var out []*domain.Session
	for _, call := range m.Calls {
		if call.Method == method {
			out = append(out, call.Arguments.Get(1).(*domain.Session))
		}
	}
	return out
}

type mockTreeStore struct {
	mock.Mock
}

func (m *mockTreeStore) Create(ctx context.Context, tree *domain.Tree) error {
	args := m.Called(ctx, tree)
	return args.Error(0)
}

func (m *mockTreeStore) Update(ctx context.Context, tree *domain.Tree) error {
	args := m.Called(ctx, tree)
	return args.Error(0)
}

func (m *mockTreeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tree, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tree), args.Error(1)
}

func (m *mockTreeStore) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*domain.Tree, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tree), args.Error(1)
}

func (m *mockTreeStore) List(ctx context.Context, limit int) ([]*domain.Tree, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*domain.Tree), args.Error(1)
}

func (m *mockTreeStore) CountByStage(ctx context.Context) (map[domain.GrowthStage]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[domain.GrowthStage]int), args.Error(1)
}

func (m *mockTreeStore) written(method string) []*domain.Tree {
	var out []*domain.Tree
	for _, call := range m.Calls {
		if call.Method == method {
			out = append(out, call.Arguments.Get(1).(*domain.Tree))
		}
	}
	return out
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingNotifier records notification names in order.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
	texts  []string
}

func (n *recordingNotifier) add(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, name)
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func (n *recordingNotifier) OnSessionStarted(context.Context, *domain.Session)   { n.add("started") }
func (n *recordingNotifier) OnSessionPaused(context.Context, *domain.Session)    { n.add("paused") }
func (n *recordingNotifier) OnSessionResumed(context.Context, *domain.Session)   { n.add("resumed") }
func (n *recordingNotifier) OnSessionCompleted(context.Context, *domain.Session) { n.add("completed") }
func (n *recordingNotifier) OnSessionAbandoned(context.Context, *domain.Session) { n.add("abandoned") }
func (n *recordingNotifier) OnBreakEndingSoon(context.Context, *domain.Session, time.Duration) {
	n.add("break_ending_soon")
}
func (n *recordingNotifier) OnTreeGrowthChanged(_ context.Context, tree *domain.Tree, _ domain.GrowthStage) {
	n.add("tree:" + string(tree.Stage))
}
func (n *recordingNotifier) OnMotivationalMessage(_ context.Context, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
}

type recordingAudio struct {
	mu    sync.Mutex
	calls []string
}

func (a *recordingAudio) record(call string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, call)
}

func (a *recordingAudio) Start(_ context.Context, track string) { a.record("start:" + track) }
func (a *recordingAudio) Pause(context.Context)                 { a.record("pause") }
func (a *recordingAudio) Resume(context.Context)                { a.record("resume") }
func (a *recordingAudio) Stop(context.Context)                  { a.record("stop") }
