package queries

import (
	"context"

	"github.com/ogenrwotdaniel/focusflow/internal/focus/domain"
)

// GardenStats summarizes the garden.
type GardenStats struct {
	Total      int
	FullyGrown int
	Withered   int
	Growing    int // trees still in progress or left open
	ByStage    map[domain.GrowthStage]int
	// SuccessRate is mature trees over finished trees, 0 when none finished.
	SuccessRate float64
}

// GardenStatsHandler computes garden statistics.
type GardenStatsHandler struct {
	treeRepo domain.TreeStore
}

// NewGardenStatsHandler creates a new GardenStatsHandler.
func NewGardenStatsHandler(treeRepo domain.TreeStore) *GardenStatsHandler {
	return &GardenStatsHandler{treeRepo: treeRepo}
}

// Handle executes the query.
func (h *GardenStatsHandler) Handle(ctx context.Context) (*GardenStats, error) {
	counts, err := h.treeRepo.CountByStage(ctx)
	if err != nil {
		return nil, err
	}

	stats := &GardenStats{ByStage: make(map[domain.GrowthStage]int, len(domain.AllStages))}
	for _, stage := range domain.AllStages {
		n := counts[stage]
		stats.ByStage[stage] = n
		stats.Total += n
	}
	stats.FullyGrown = counts[domain.StageMature]
	stats.Withered = counts[domain.StageWithered]
	stats.Growing = stats.Total - stats.FullyGrown - stats.Withered

	if finished := stats.FullyGrown + stats.Withered; finished > 0 {
		stats.SuccessRate = float64(stats.FullyGrown) / float64(finished)
	}
	return stats, nil
}
