// Package queries contains read handlers for the garden.
package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
)

// DefaultTreeLimit caps ListTrees when no limit is given.
const DefaultTreeLimit = 50

// TreeDTO is a data transfer object for trees.
type TreeDTO struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	Type        string
	Stage       string
	PlantedAt   time.Time
	CompletedAt *time.Time
	FullyGrown  bool
}

// ListTreesQuery contains the parameters for listing trees.
type ListTreesQuery struct {
	Limit int
	Stage string // only trees in this stage when set
}

// ListTreesHandler handles the ListTreesQuery.
type ListTreesHandler struct {
	treeRepo domain.TreeStore
}

// NewListTreesHandler creates a new ListTreesHandler.
func NewListTreesHandler(treeRepo domain.TreeStore) *ListTreesHandler {
	return &ListTreesHandler{treeRepo: treeRepo}
}

// Handle returns the garden, most recently planted first.
func (h *ListTreesHandler) Handle(ctx context.Context, query ListTreesQuery) ([]TreeDTO, error) {
	if query.Limit <= 0 {
		query.Limit = DefaultTreeLimit
	}

	trees, err := h.treeRepo.List(ctx, query.Limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]TreeDTO, 0, len(trees))
	for _, t := range trees {
		if query.Stage != "" && string(t.Stage) != query.Stage {
			continue
		}
		dtos = append(dtos, TreeDTO{
			ID:          t.ID,
			SessionID:   t.SessionID,
			Type:        string(t.Type),
			Stage:       string(t.Stage),
			PlantedAt:   t.PlantedAt,
			CompletedAt: t.CompletedAt,
			FullyGrown:  t.IsFullyGrown(),
		})
	}
	return dtos, nil
}
