package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GrowthStage is the visual progress of a tree. The first five stages are
// ordered; Withered is terminal and sits outside the order.
type GrowthStage string

const (
	StageSeed     GrowthStage = "seed"
	StageSprout   GrowthStage = "sprout"
	StageSapling  GrowthStage = "sapling"
	StageGrowing  GrowthStage = "growing"
	StageMature   GrowthStage = "mature"
	StageWithered GrowthStage = "withered"
)

var stageRank = map[GrowthStage]int{
	StageSeed:    0,
	StageSprout:  1,
	StageSapling: 2,
	StageGrowing: 3,
	StageMature:  4,
}

// AllStages lists every stage, growth order first.
var AllStages = []GrowthStage{StageSeed, StageSprout, StageSapling, StageGrowing, StageMature, StageWithered}

// IsValid reports whether s is a known stage.
func (s GrowthStage) IsValid() bool {
	_, ok := stageRank[s]
	return ok || s == StageWithered
}

// IsFinal reports whether no further stage change is possible.
func (s GrowthStage) IsFinal() bool {
	return s == StageMature || s == StageWithered
}

// StageForProgress maps a session's progress fraction to a growth stage.
func StageForProgress(progress float64) GrowthStage {
	switch {
	case progress < 0.01:
		return StageSeed
	case progress < 0.25:
		return StageSprout
	case progress < 0.50:
		return StageSapling
	case progress < 0.75:
		return StageGrowing
	default:
		return StageMature
	}
}

// TreeType is the cosmetic species a user plants.
type TreeType string

const (
	TreeTypeOak    TreeType = "oak"
	TreeTypeMaple  TreeType = "maple"
	TreeTypePine   TreeType = "pine"
	TreeTypeCherry TreeType = "cherry"
	TreeTypeWillow TreeType = "willow"
	TreeTypeSakura TreeType = "sakura"
)

// TreeTypes lists the species in display order.
var TreeTypes = []TreeType{TreeTypeOak, TreeTypeMaple, TreeTypePine, TreeTypeCherry, TreeTypeWillow, TreeTypeSakura}

// ParseTreeType is case-insensitive; unknown names fall back to oak.
func ParseTreeType(name string) TreeType {
	candidate := TreeType(strings.ToLower(strings.TrimSpace(name)))
	for _, t := range TreeTypes {
		if t == candidate {
			return t
		}
	}
	return TreeTypeOak
}

// ErrTreeFinalized is returned when a mature tree would wither or a
// withered tree would complete.
var ErrTreeFinalized = errors.New("tree is already finalized")

// Tree is the garden artifact grown by one focus session.
type Tree struct {
	ID          uuid.UUID
	Type        TreeType
	Stage       GrowthStage
	PlantedAt   time.Time
	CompletedAt *time.Time
	SessionID   uuid.UUID
	UpdatedAt   time.Time
}

// NewTree plants a seed for the session.
func NewTree(sessionID uuid.UUID, treeType TreeType, plantedAt time.Time) *Tree {
	return &Tree{
		ID:        uuid.New(),
		Type:      treeType,
		Stage:     StageSeed,
		PlantedAt: plantedAt,
		SessionID: sessionID,
		UpdatedAt: plantedAt,
	}
}

// Grow moves the tree forward to stage. It never regresses and never
// changes a final tree. Reaching Mature by progress leaves CompletedAt unset
// until Complete. It reports whether the stage changed.
func (t *Tree) Grow(stage GrowthStage, at time.Time) bool {
	if t.Stage.IsFinal() || stage == StageWithered {
		return false
	}
	if stageRank[stage] <= stageRank[t.Stage] {
		return false
	}
	t.Stage = stage
	t.UpdatedAt = at
	return true
}

// Wither abandons the tree. Withering twice is a no-op; a mature tree
// cannot wither.
func (t *Tree) Wither(at time.Time) error {
	switch t.Stage {
	case StageWithered:
		return nil
	case StageMature:
		return ErrTreeFinalized
	}
	t.Stage = StageWithered
	t.UpdatedAt = at
	return nil
}

// Complete makes the tree mature and stamps CompletedAt. A tree that grew
// to Mature is stamped on its first Complete. Completing twice is a no-op;
// a withered tree stays withered.
func (t *Tree) Complete(at time.Time) error {
	switch t.Stage {
	case StageMature:
		if t.CompletedAt == nil {
			t.CompletedAt = &at
			t.UpdatedAt = at
		}
		return nil
	case StageWithered:
		return ErrTreeFinalized
	}
	t.Stage = StageMature
	t.CompletedAt = &at
	t.UpdatedAt = at
	return nil
}

// IsFullyGrown reports whether the tree reached maturity.
func (t *Tree) IsFullyGrown() bool {
	return t.Stage == StageMature
}

// Clone returns a copy that shares no pointers with t.
func (t *Tree) Clone() *Tree {
	c := *t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}
