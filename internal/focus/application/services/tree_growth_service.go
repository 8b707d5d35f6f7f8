package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
	prefDomain "github.com/ogenrwotdaniel/focusflow/internal/preferences/domain"
	"github.com/ogenrwotdaniel/focusflow/pkg/observability"
)

// TreeGrowthService grows the tree of the current focus session. It caches
// the tree and only writes when the stage actually changes.
type TreeGrowthService struct {
	trees    domain.TreeStore
	prefs    prefDomain.PreferenceStore
	journal  *WriteJournal
	clock    domain.Clock
	notifier domain.Notifier
	logger   *slog.Logger
	metrics  observability.Metrics

	mu            sync.Mutex
	current       *domain.Tree
	lastSessionID uuid.UUID
}

// NewTreeGrowthService creates a tree growth service.
func NewTreeGrowthService(
	trees domain.TreeStore,
	prefs prefDomain.PreferenceStore,
	journal *WriteJournal,
	clock domain.Clock,
	notifier domain.Notifier,
	logger *slog.Logger,
	metrics observability.Metrics,
) *TreeGrowthService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if notifier == nil {
		notifier = domain.NopNotifier{}
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &TreeGrowthService{
		trees:    trees,
		prefs:    prefs,
		journal:  journal,
		clock:    clock,
		notifier: notifier,
		logger:   observability.OrDefault(logger).With("component", "tree_growth"),
		metrics:  metrics,
	}
}

// StartGrowingTree plants a seed for the session. Calling it again for the
// same session before Reset returns the cached tree without writing.
func (s *TreeGrowthService) StartGrowingTree(ctx context.Context, sessionID uuid.UUID) (*domain.Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.lastSessionID == sessionID {
		return s.current.Clone(), nil
	}

	tree := domain.NewTree(sessionID, s.treeType(ctx), s.clock.Now())
	s.current = tree
	s.lastSessionID = sessionID

	s.logger.InfoContext(ctx, "tree planted", "tree_id", tree.ID, "tree_type", tree.Type)

	snapshot := tree.Clone()
	err := s.journal.Do(ctx, "tree.create", func(ctx context.Context) error {
		return s.trees.Create(ctx, snapshot)
	})
	return tree.Clone(), err
}

// UpdateGrowthProgress maps progress to a stage and persists the tree only
// when the stage changed.
func (s *TreeGrowthService) UpdateGrowthProgress(ctx context.Context, progress float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	previous := s.current.Stage
	if !s.current.Grow(domain.StageForProgress(progress), s.clock.Now()) {
		return nil
	}
	return s.persistChange(ctx, previous)
}

// CompleteCurrentTree matures the current tree.
func (s *TreeGrowthService) CompleteCurrentTree(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	previous := s.current.Stage
	stamped := s.current.CompletedAt != nil
	if err := s.current.Complete(s.clock.Now()); err != nil {
		return err
	}
	if previous != s.current.Stage {
		return s.persistChange(ctx, previous)
	}
	if stamped {
		return nil
	}
	tree := s.current.Clone()
	return s.journal.Do(ctx, "tree.update", func(ctx context.Context) error {
		return s.trees.Update(ctx, tree)
	})
}

// WitherCurrentTree withers the current tree. A mature tree is left alone.
func (s *TreeGrowthService) WitherCurrentTree(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.Stage.IsFinal() {
		return nil
	}
	previous := s.current.Stage
	if err := s.current.Wither(s.clock.Now()); err != nil {
		return err
	}
	return s.persistChange(ctx, previous)
}

// CurrentTree returns a copy of the cached tree, or nil.
func (s *TreeGrowthService) CurrentTree() *domain.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current.Clone()
}

// Reset forgets the current tree so the next session plants a new one.
func (s *TreeGrowthService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.lastSessionID = uuid.Nil
}

// FullyGrownTreeCount returns the number of mature trees in the garden.
func (s *TreeGrowthService) FullyGrownTreeCount(ctx context.Context) (int, error) {
	counts, err := s.trees.CountByStage(ctx)
	if err != nil {
		return 0, err
	}
	return counts[domain.StageMature], nil
}

func (s *TreeGrowthService) persistChange(ctx context.Context, previous domain.GrowthStage) error {
	tree := s.current.Clone()

	s.logger.InfoContext(ctx, "tree stage changed",
		"tree_id", tree.ID,
		"from", previous,
		"to", tree.Stage,
	)
	s.metrics.Counter(observability.MetricTreeStageChanges, 1, observability.T("stage", string(tree.Stage)))
	s.notifier.OnTreeGrowthChanged(ctx, tree, previous)

	return s.journal.Do(ctx, "tree.update", func(ctx context.Context) error {
		return s.trees.Update(ctx, tree)
	})
}

func (s *TreeGrowthService) treeType(ctx context.Context) domain.TreeType {
	if s.prefs == nil {
		return domain.TreeTypeOak
	}
	prefs, err := s.prefs.Get(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "failed to read tree preference", "error", err)
	}
	return domain.ParseTreeType(prefs.TreeType)
}
