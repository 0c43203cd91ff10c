package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cogmem/cogmem/internal/model"
)

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)

	cause := remember(t, src, "deploy went out at noon", model.Episodic, 0.7)
	effect := remember(t, src, "error rate spiked", model.Episodic, 0.9)
	fact := remember(t, src, "retries mask transient failures", model.Semantic, 0.6)
	if err := src.Link(ctx, cause.ID, effect.ID, model.Causes); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := src.Link(ctx, fact.ID, "reliability", model.LinkedToConcept); err != nil {
		t.Fatalf("link concept: %v", err)
	}

	exp, err := src.ExportAll(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(exp.Memories) != 3 || len(exp.Relations) != 2 {
		t.Fatalf("unexpected export sizes: %d memories, %d relations", len(exp.Memories), len(exp.Relations))
	}
	for _, m := range exp.Memories {
		if len(m.Embedding) != 0 {
			t.Error("export must not carry embeddings")
		}
	}

	dst, err := New(Options{Path: filepath.Join(t.TempDir(), "dst.db")})
	if err != nil {
		t.Fatalf("create destination store: %v", err)
	}
	t.Cleanup(func() { dst.Close() })

	n, err := dst.Import(ctx, exp)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 imported, got %d", n)
	}

	// Causal edge survives under remapped ids.
	effects, err := dst.Recall(ctx, RecallParams{Query: "error rate spiked", Limit: 1})
	if err != nil || len(effects) != 1 {
		t.Fatalf("recall imported effect: %v / %d", err, len(effects))
	}
	causes, err := dst.FindCauses(ctx, effects[0].ID)
	if err != nil {
		t.Fatalf("find causes: %v", err)
	}
	if len(causes) != 1 || causes[0].Content != "deploy went out at noon" {
		t.Errorf("causal edge not remapped: %+v", causes)
	}

	// Concept edge keeps its label verbatim.
	tagged, err := dst.FindByConcept(ctx, "reliability", 5)
	if err != nil {
		t.Fatalf("find by concept: %v", err)
	}
	if len(tagged) != 1 || tagged[0].Content != "retries mask transient failures" {
		t.Errorf("concept edge lost on import: %+v", tagged)
	}
}

func TestImport_SkipsRelationsWithForeignSource(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	exp := &Export{
		Memories: []model.Memory{
			{ID: "orig-1", Content: "lonely memory", Type: model.Semantic, Importance: 0.5},
		},
		Relations: []model.Relation{
			{SourceID: "never-exported", TargetID: "orig-1", Kind: model.Supports},
		},
	}

	n, err := s.Import(ctx, exp)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 imported, got %d", n)
	}
}
