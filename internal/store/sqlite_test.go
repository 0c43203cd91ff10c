package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cogmem/cogmem/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := New(Options{Path: filepath.Join(dir, "test.db")})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr(v float64) *float64 { return &v }

func TestRememberAndRecallByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, err := s.Remember(ctx, RememberParams{
		Content: "the sky is blue", Type: model.Semantic, Importance: 0.9,
	})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}
	if mem.ID == "" {
		t.Error("expected non-empty ID")
	}
	if len(mem.Embedding) == 0 {
		t.Error("expected embedding to be computed at write time")
	}

	got, err := s.RecallByID(ctx, mem.ID)
	if err != nil {
		t.Fatalf("recall by id: %v", err)
	}
	if got == nil {
		t.Fatal("expected memory, got nil")
	}
	if got.Content != "the sky is blue" || got.Type != model.Semantic || got.Importance != 0.9 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestRecallByID_Absent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	got, err := s.RecallByID(ctx, "01JUNKJUNKJUNKJUNKJUNKJUNK")
	if err != nil {
		t.Fatalf("expected absence to be a non-error, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestRemember_Validation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Remember(ctx, RememberParams{Content: "x", Type: model.Semantic, Importance: 1.5})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("importance out of range: expected ErrValidation, got %v", err)
	}

	_, err = s.Remember(ctx, RememberParams{
		Content: "x", Type: model.Episodic, Importance: 0.5, Valence: ptr(-2),
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("valence out of range: expected ErrValidation, got %v", err)
	}

	_, err = s.Remember(ctx, RememberParams{Content: "x", Type: "PROCEDURAL", Importance: 0.5})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("unknown type: expected ErrValidation, got %v", err)
	}
}

func TestRemember_EmptyContent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Remember(ctx, RememberParams{Content: "   ", Type: model.Semantic, Importance: 0.5})
	if !errors.Is(err, ErrEmbedding) {
		t.Errorf("expected ErrEmbedding for empty content, got %v", err)
	}
}

func TestRemember_ValenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, err := s.Remember(ctx, RememberParams{
		Content: "won the game", Type: model.Episodic, Importance: 0.7, Valence: ptr(0.9),
	})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}

	got, _ := s.RecallByID(ctx, mem.ID)
	if got.Valence == nil || *got.Valence != 0.9 {
		t.Errorf("expected valence 0.9, got %v", got.Valence)
	}

	plain, _ := s.Remember(ctx, RememberParams{Content: "plain fact", Type: model.Semantic, Importance: 0.5})
	got, _ = s.RecallByID(ctx, plain.ID)
	if got.Valence != nil {
		t.Errorf("expected absent valence, got %v", *got.Valence)
	}
}

func TestRecallRecent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Importance must not affect recency ordering.
	importances := []float64{1.0, 0.95, 0.9, 0.85, 0.8}
	ids := make([]string, 0, len(importances))
	for i, imp := range importances {
		m, err := s.Remember(ctx, RememberParams{
			Content: "fact number " + string(rune('a'+i)), Type: model.Semantic, Importance: imp,
		})
		if err != nil {
			t.Fatalf("remember: %v", err)
		}
		ids = append(ids, m.ID)
	}

	recent, err := s.RecallRecent(ctx, 3, "")
	if err != nil {
		t.Fatalf("recall recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3, got %d", len(recent))
	}
	for i := 0; i < 3; i++ {
		want := ids[len(ids)-1-i]
		if recent[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, recent[i].ID)
		}
	}
}

func TestRecallRecent_TypeFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Remember(ctx, RememberParams{Content: "a fact", Type: model.Semantic, Importance: 0.5})
	s.Remember(ctx, RememberParams{Content: "an event", Type: model.Episodic, Importance: 0.5})

	got, err := s.RecallRecent(ctx, 10, model.Episodic)
	if err != nil {
		t.Fatalf("recall recent: %v", err)
	}
	if len(got) != 1 || got[0].Type != model.Episodic {
		t.Errorf("expected 1 episodic memory, got %+v", got)
	}

	none, err := s.RecallRecent(ctx, 0, "")
	if err != nil || len(none) != 0 {
		t.Errorf("limit 0 should yield empty, got %v / %v", none, err)
	}
}

func TestNew_CreatesDBPath(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := New(Options{Path: dbPath})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()
}

func TestIndexRebuildOnReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := New(Options{Path: dbPath})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	mem, err := s.Remember(ctx, RememberParams{
		Content: "persistent across restarts", Type: model.Semantic, Importance: 0.5,
	})
	if err != nil {
		t.Fatalf("remember: %v", err)
	}
	s.Close()

	s2, err := New(Options{Path: dbPath})
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer s2.Close()

	got, err := s2.Recall(ctx, RecallParams{Query: "persistent across restarts", Limit: 1})
	if err != nil {
		t.Fatalf("recall after reopen: %v", err)
	}
	if len(got) != 1 || got[0].ID != mem.ID {
		t.Errorf("expected reindexed memory %s, got %+v", mem.ID, got)
	}
}
