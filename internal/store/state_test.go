package store

import (
	"context"
	"errors"
	"testing"

	"github.com/cogmem/cogmem/internal/model"
)

func TestIdentity_LatestRevisionWins(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.PutIdentity(ctx, model.AspectPurpose, "learn"); err != nil {
		t.Fatalf("put identity: %v", err)
	}
	if err := s.PutIdentity(ctx, model.AspectPurpose, "learn and teach"); err != nil {
		t.Fatalf("put identity: %v", err)
	}
	if err := s.PutIdentity(ctx, model.AspectValues, "honesty"); err != nil {
		t.Fatalf("put identity: %v", err)
	}

	aspects, err := s.Identity(ctx)
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	if len(aspects) != 2 {
		t.Fatalf("expected one entry per aspect type, got %d", len(aspects))
	}

	byType := map[model.AspectType]string{}
	for _, a := range aspects {
		byType[a.AspectType] = a.Content
	}
	if byType[model.AspectPurpose] != "learn and teach" {
		t.Errorf("expected latest purpose revision, got %q", byType[model.AspectPurpose])
	}
}

func TestPutIdentity_InvalidAspect(t *testing.T) {
	s := newTestStore(t)
	err := s.PutIdentity(context.Background(), "mood", "cheerful")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestPutBelief_ConfidenceRange(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.PutBelief(ctx, "everything is connected", "philosophy", 1.2); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	b, err := s.PutBelief(ctx, "tests catch regressions", "engineering", 0.95)
	if err != nil {
		t.Fatalf("put belief: %v", err)
	}
	if b.ID == "" {
		t.Error("expected belief id")
	}

	beliefs, err := s.Worldview(ctx)
	if err != nil {
		t.Fatalf("worldview: %v", err)
	}
	if len(beliefs) != 1 || beliefs[0].Belief != "tests catch regressions" {
		t.Errorf("unexpected worldview: %+v", beliefs)
	}
}

func TestGoals_PriorityFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.PutGoal(ctx, "ship the release", "", model.GoalActive)
	s.PutGoal(ctx, "refactor storage", "", model.GoalDeferred)
	s.PutGoal(ctx, "fix flaky test", "waiting on infra", model.GoalBlocked)

	all, err := s.Goals(ctx, "")
	if err != nil {
		t.Fatalf("goals: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 goals, got %d", len(all))
	}

	active, err := s.Goals(ctx, model.GoalActive)
	if err != nil {
		t.Fatalf("goals filtered: %v", err)
	}
	if len(active) != 1 || active[0].Title != "ship the release" {
		t.Errorf("unexpected active goals: %+v", active)
	}

	if _, err := s.Goals(ctx, "URGENT"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for unknown priority, got %v", err)
	}
}

func TestSetDrive_UpsertAndValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.SetDrive(ctx, "curiosity", 0.4, 1.0); err != nil {
		t.Fatalf("set drive: %v", err)
	}
	if err := s.SetDrive(ctx, "curiosity", 0.7, 1.0); err != nil {
		t.Fatalf("update drive: %v", err)
	}

	drives, err := s.Drives(ctx)
	if err != nil {
		t.Fatalf("drives: %v", err)
	}
	if len(drives) != 1 || drives["curiosity"] != 0.7 {
		t.Errorf("expected curiosity=0.7, got %v", drives)
	}

	if err := s.SetDrive(ctx, "energy", 5, 1.0); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for level above max, got %v", err)
	}
}

func TestEmotion_FallbackToEpisodicValence(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// No record at all.
	emo, err := s.Emotion(ctx)
	if err != nil {
		t.Fatalf("emotion: %v", err)
	}
	if emo != nil {
		t.Errorf("expected nil with no state, got %+v", emo)
	}

	// Episodic memory with valence acts as fallback.
	s.Remember(ctx, RememberParams{
		Content: "great demo today", Type: model.Episodic, Importance: 0.8, Valence: ptr(0.6),
	})
	emo, err = s.Emotion(ctx)
	if err != nil {
		t.Fatalf("emotion: %v", err)
	}
	if emo == nil || emo.Valence != 0.6 {
		t.Errorf("expected fallback valence 0.6, got %+v", emo)
	}

	// A dedicated record takes precedence.
	if err := s.SetEmotion(ctx, "calm", 0.2); err != nil {
		t.Fatalf("set emotion: %v", err)
	}
	emo, err = s.Emotion(ctx)
	if err != nil {
		t.Fatalf("emotion: %v", err)
	}
	if emo.Emotion != "calm" || emo.Valence != 0.2 {
		t.Errorf("expected dedicated record, got %+v", emo)
	}
}

func TestHealth_Aggregates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := remember(t, s, "fact one", model.Semantic, 0.9)
	b := remember(t, s, "event one", model.Episodic, 0.8)
	s.Link(ctx, a.ID, b.ID, model.Causes)

	s.SetDrive(ctx, "energy", 0.9, 1.0)
	s.SetDrive(ctx, "curiosity", 0.3, 1.0)
	s.PutGoal(ctx, "active goal", "", model.GoalActive)
	s.PutGoal(ctx, "blocked goal", "", model.GoalBlocked)
	s.PutGoal(ctx, "done goal", "", model.GoalDone)
	s.SetEmotion(ctx, "focused", 0.5)

	h, err := s.Health(ctx)
	if err != nil {
		t.Fatalf("health: %v", err)
	}

	if h.TotalMemories != 2 {
		t.Errorf("total memories: expected 2, got %d", h.TotalMemories)
	}
	if h.MemoriesByType[model.Semantic] != 1 || h.MemoriesByType[model.Episodic] != 1 {
		t.Errorf("memories by type: %v", h.MemoriesByType)
	}
	if h.StaleNeighborhoods != 0 {
		t.Errorf("freshly linked memories should not be stale, got %d", h.StaleNeighborhoods)
	}
	if h.AvgDriveLevel < 0.59 || h.AvgDriveLevel > 0.61 {
		t.Errorf("avg drive: expected 0.6, got %f", h.AvgDriveLevel)
	}
	if h.UrgentDrives != 1 {
		t.Errorf("urgent drives: expected 1, got %d", h.UrgentDrives)
	}
	if h.Energy != 0.9 || h.MaxEnergy != 1.0 {
		t.Errorf("energy: expected 0.9/1.0, got %f/%f", h.Energy, h.MaxEnergy)
	}
	if h.ActiveGoals != 1 || h.BlockedGoals != 1 {
		t.Errorf("goals: expected 1 active / 1 blocked, got %d/%d", h.ActiveGoals, h.BlockedGoals)
	}
	if h.CurrentEmotion != "focused" || h.CurrentValence != 0.5 {
		t.Errorf("emotion: got %q/%f", h.CurrentEmotion, h.CurrentValence)
	}
	if h.MemoriesLast24h != 2 || h.RelationsLast24h != 1 {
		t.Errorf("24h counts: got %d memories / %d relations", h.MemoriesLast24h, h.RelationsLast24h)
	}
}

func TestHealth_StaleNeighborhoods(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	remember(t, s, "isolated fact", model.Semantic, 0.5)

	h, err := s.Health(ctx)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if h.StaleNeighborhoods != 1 {
		t.Errorf("memory with no edges should count as stale, got %d", h.StaleNeighborhoods)
	}
}
