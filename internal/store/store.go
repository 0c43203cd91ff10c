// Package store provides the cognitive memory storage interface and its
// SQLite implementation: memory records with embeddings, the relation
// graph, and the identity/worldview/goal/drive state collections.
package store

import (
	"context"

	"github.com/cogmem/cogmem/internal/model"
)

// RememberParams holds parameters for storing a memory.
type RememberParams struct {
	Content    string
	Type       model.MemoryType
	Importance float64
	Valence    *float64 // optional, [-1, 1]
}

// RecallParams holds parameters for similarity search.
type RecallParams struct {
	Query string
	Limit int
	Type  model.MemoryType // empty means all types
}

// Store defines the full caller-facing contract of the memory core.
type Store interface {
	// Remember embeds and persists a new memory, returning the stored record.
	Remember(ctx context.Context, p RememberParams) (*model.Memory, error)

	// Recall ranks stored memories by similarity to the query, descending.
	// Ties break toward more recent memories. Limit <= 0 yields an empty
	// result, not an error.
	Recall(ctx context.Context, p RecallParams) ([]model.ScoredMemory, error)

	// RecallByID is a point lookup. A missing id returns (nil, nil).
	RecallByID(ctx context.Context, id string) (*model.Memory, error)

	// RecallRecent returns memories strictly by creation time descending,
	// optionally filtered by type.
	RecallRecent(ctx context.Context, limit int, typ model.MemoryType) ([]model.Memory, error)

	// SearchWorking is Recall scoped to WORKING memories, subject to the
	// retention policy.
	SearchWorking(ctx context.Context, query string, limit int) ([]model.ScoredMemory, error)

	// Link inserts a directed edge; duplicate (source, target, kind) is a
	// no-op. The source must be an existing memory.
	Link(ctx context.Context, sourceID, targetID string, kind model.RelationKind) error

	// FindCauses returns the direct causal predecessors of a memory,
	// most recently linked first. Traversal is fixed at one hop.
	FindCauses(ctx context.Context, memoryID string) ([]model.Memory, error)

	// FindContradictions returns CONTRADICTS pairs, most recently linked first.
	FindContradictions(ctx context.Context, limit int) ([]model.ContradictionPair, error)

	// FindSupportingEvidence returns memories with a SUPPORTS edge into the
	// belief, by importance descending. An unknown belief id yields empty.
	FindSupportingEvidence(ctx context.Context, worldviewID string, limit int) ([]model.Memory, error)

	// FindByConcept returns memories linked to a concept label (exact,
	// case-normalized match), by importance descending.
	FindByConcept(ctx context.Context, concept string, limit int) ([]model.Memory, error)

	// Identity returns the latest revision of each identity aspect.
	Identity(ctx context.Context) ([]model.IdentityAspect, error)

	// Worldview returns all worldview beliefs.
	Worldview(ctx context.Context) ([]model.WorldviewBelief, error)

	// Goals returns goals, filtered by priority when given.
	Goals(ctx context.Context, priority model.GoalPriority) ([]model.Goal, error)

	// Drives returns the current drive levels by name.
	Drives(ctx context.Context) (map[string]float64, error)

	// Emotion returns the current emotional state: the latest dedicated
	// record, else the latest EPISODIC valence, else (nil, nil).
	Emotion(ctx context.Context) (*model.EmotionalState, error)

	// Health computes the rollup snapshot from live state.
	Health(ctx context.Context) (*model.HealthSnapshot, error)

	// Write paths for the state collections.
	PutIdentity(ctx context.Context, aspect model.AspectType, content string) error
	PutBelief(ctx context.Context, belief, category string, confidence float64) (*model.WorldviewBelief, error)
	PutGoal(ctx context.Context, title, description string, priority model.GoalPriority) (*model.Goal, error)
	SetDrive(ctx context.Context, name string, level, max float64) error
	SetEmotion(ctx context.Context, emotion string, valence float64) error

	// EvictWorking applies the WORKING retention policy once, returning the
	// number of evicted entries.
	EvictWorking(ctx context.Context) (int, error)

	// Close closes the store.
	Close() error
}
