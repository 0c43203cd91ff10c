// Package model defines the core cognitive memory data types.
package model

import "time"

// MemoryType classifies a memory record.
type MemoryType string

const (
	// Semantic memories are facts.
	Semantic MemoryType = "SEMANTIC"
	// Episodic memories are events, optionally carrying an emotional valence.
	Episodic MemoryType = "EPISODIC"
	// Strategic memories are learned patterns and approaches.
	Strategic MemoryType = "STRATEGIC"
	// Working memories are short-term buffer entries subject to eviction.
	Working MemoryType = "WORKING"
)

// ValidMemoryTypes are the allowed memory types.
var ValidMemoryTypes = map[MemoryType]bool{
	Semantic:  true,
	Episodic:  true,
	Strategic: true,
	Working:   true,
}

// Memory represents a stored memory record. The embedding is derived from
// the content at write time and is always consistent with it.
type Memory struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	Type       MemoryType `json:"type"`
	Importance float64    `json:"importance"`
	Valence    *float64   `json:"valence,omitempty"`
	Embedding  []float32  `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ScoredMemory is a memory paired with its similarity to a query.
type ScoredMemory struct {
	Memory
	Similarity float64 `json:"similarity"`
}

// RelationKind is the type of a directed edge between memories
// (or from a memory to a concept label / worldview belief).
type RelationKind string

const (
	Causes          RelationKind = "CAUSES"
	Contradicts     RelationKind = "CONTRADICTS"
	Supports        RelationKind = "SUPPORTS"
	LinkedToConcept RelationKind = "LINKED_TO_CONCEPT"
)

// ValidRelationKinds are the allowed edge kinds.
var ValidRelationKinds = map[RelationKind]bool{
	Causes:          true,
	Contradicts:     true,
	Supports:        true,
	LinkedToConcept: true,
}

// Relation is a directed edge in the memory graph. For LINKED_TO_CONCEPT
// the target is a case-normalized concept label, not a memory id.
type Relation struct {
	SourceID  string       `json:"source_id"`
	TargetID  string       `json:"target_id"`
	Kind      RelationKind `json:"kind"`
	CreatedAt time.Time    `json:"created_at"`
}

// ContradictionPair is a pair of memories connected by a CONTRADICTS edge.
type ContradictionPair struct {
	Source   Memory    `json:"source"`
	Target   Memory    `json:"target"`
	LinkedAt time.Time `json:"linked_at"`
}

// WorldviewBelief is a belief about the world with a confidence level.
// Evidence points from memories into beliefs via SUPPORTS edges.
type WorldviewBelief struct {
	ID         string    `json:"id"`
	Belief     string    `json:"belief"`
	Category   string    `json:"category"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// AspectType names one dimension of identity.
type AspectType string

const (
	AspectPurpose     AspectType = "purpose"
	AspectValues      AspectType = "values"
	AspectSelfConcept AspectType = "self_concept"
	AspectAgency      AspectType = "agency"
	AspectBoundary    AspectType = "boundary"
)

// ValidAspectTypes are the allowed identity aspect types.
var ValidAspectTypes = map[AspectType]bool{
	AspectPurpose:     true,
	AspectValues:      true,
	AspectSelfConcept: true,
	AspectAgency:      true,
	AspectBoundary:    true,
}

// IdentityAspect is one current identity dimension. At most one value per
// aspect type is authoritative; the latest revision wins.
type IdentityAspect struct {
	AspectType AspectType `json:"aspect_type"`
	Content    string     `json:"content"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// GoalPriority is the lifecycle state of a goal.
type GoalPriority string

const (
	GoalActive    GoalPriority = "ACTIVE"
	GoalBlocked   GoalPriority = "BLOCKED"
	GoalDeferred  GoalPriority = "DEFERRED"
	GoalDone      GoalPriority = "DONE"
	GoalAbandoned GoalPriority = "ABANDONED"
)

// ValidGoalPriorities are the allowed goal states.
var ValidGoalPriorities = map[GoalPriority]bool{
	GoalActive:    true,
	GoalBlocked:   true,
	GoalDeferred:  true,
	GoalDone:      true,
	GoalAbandoned: true,
}

// Goal is a tracked objective. Lifecycle transitions are owned by the
// caller; the store only records and filters by priority.
type Goal struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    GoalPriority `json:"priority"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Drive is a named motivational scalar in [0, Max].
type Drive struct {
	Name      string    `json:"name"`
	Level     float64   `json:"level"`
	Max       float64   `json:"max"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmotionalState is the most recent recorded emotion.
type EmotionalState struct {
	Emotion   string    `json:"emotion"`
	Valence   float64   `json:"valence"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HealthSnapshot is a rollup of system state. Every field is computed at
// query time from the live tables; nothing here is independently stored.
type HealthSnapshot struct {
	TotalMemories      int                `json:"total_memories"`
	MemoriesByType     map[MemoryType]int `json:"memories_by_type"`
	StaleNeighborhoods int                `json:"stale_neighborhoods"`
	AvgDriveLevel      float64            `json:"avg_drive_level"`
	UrgentDrives       int                `json:"urgent_drives"`
	Energy             float64            `json:"energy"`
	MaxEnergy          float64            `json:"max_energy"`
	ActiveGoals        int                `json:"active_goals"`
	BlockedGoals       int                `json:"blocked_goals"`
	CurrentEmotion     string             `json:"current_emotion,omitempty"`
	CurrentValence     float64            `json:"current_valence"`
	MemoriesLast24h    int                `json:"memories_24h"`
	RelationsLast24h   int                `json:"relationships_discovered_24h"`
}

// Context is the assembled bundle returned by hydration. A nil section
// means it was not requested; a requested-but-empty section is non-nil.
type Context struct {
	Query     string             `json:"query"`
	Memories  []ScoredMemory     `json:"memories"`
	Identity  []IdentityAspect   `json:"identity,omitempty"`
	Worldview []WorldviewBelief  `json:"worldview,omitempty"`
	Goals     []Goal             `json:"goals,omitempty"`
	Drives    map[string]float64 `json:"drives,omitempty"`
	Emotional *EmotionalState    `json:"emotional_state,omitempty"`
}
