package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
)

type mockTreeStore struct {
	mock.Mock
}

func (m *mockTreeStore) Create(ctx context.Context, tree *domain.Tree) error {
	return m.Called(ctx, tree).Error(0)
}

func (m *mockTreeStore) Update(ctx context.Context, tree *domain.Tree) error {
	return m.Called(ctx, tree).Error(0)
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Tree), args.Error(1)
}

func (m *mockTreeStore) CountByStage(ctx context.Context) (map[domain.GrowthStage]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.GrowthStage]int), args.Error(1)
}

func TestListTreesHandler_Handle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	mature := domain.NewTree(uuid.New(), domain.TreeTypeOak, now)
	require.NoError(t, mature.Complete(now.Add(25*time.Minute)))
	withered := domain.NewTree(uuid.New(), domain.TreeTypePine, now.Add(-time.Hour))
	require.NoError(t, withered.Wither(now))

	t.Run("applies default limit", func(t *testing.T) {
		repo := new(mockTreeStore)
		repo.On("List", ctx, DefaultTreeLimit).Return([]*domain.Tree{mature, withered}, nil)
		handler := NewListTreesHandler(repo)

		trees, err := handler.Handle(ctx, ListTreesQuery{})

		require.NoError(t, err)
		require.Len(t, trees, 2)
		assert.Equal(t, mature.ID, trees[0].ID)
		assert.True(t, trees[0].FullyGrown)
		assert.Equal(t, "pine", trees[1].Type)
		assert.False(t, trees[1].FullyGrown)
		repo.AssertExpectations(t)
	})

	t.Run("filters by stage", func(t *testing.T) {
		repo := new(mockTreeStore)
		repo.On("List", ctx, 10).Return([]*domain.Tree{mature, withered}, nil)
		handler := NewListTreesHandler(repo)

		trees, err := handler.Handle(ctx, ListTreesQuery{Limit: 10, Stage: "withered"})

		require.NoError(t, err)
		require.Len(t, trees, 1)
		assert.Equal(t, withered.ID, trees[0].ID)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		repo := new(mockTreeStore)
		repo.On("List", ctx, DefaultTreeLimit).Return(nil, errors.New("db closed"))
		handler := NewListTreesHandler(repo)

		_, err := handler.Handle(ctx, ListTreesQuery{})

		assert.EqualError(t, err, "db closed")
	})
}

func TestGardenStatsHandler_Handle(t *testing.T) {
	ctx := context.Background()
	repo := new(mockTreeStore)
	repo.On("CountByStage", ctx).Return(map[domain.GrowthStage]int{
		domain.StageMature:   6,
		domain.StageWithered: 2,
		domain.StageSapling:  1,
	}, nil)
	handler := NewGardenStatsHandler(repo)

	stats, err := handler.Handle(ctx)

	require.NoError(t, err)
	assert.Equal(t, 9, stats.Total)
	assert.Equal(t, 6, stats.FullyGrown)
	assert.Equal(t, 2, stats.Withered)
	assert.Equal(t, 1, stats.Growing)
	assert.InDelta(t, 0.75, stats.SuccessRate, 1e-9)
	assert.Equal(t, 0, stats.ByStage[domain.StageSeed])
}
