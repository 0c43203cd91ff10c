package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cogmem/cogmem/internal/model"
)

// backdate rewrites a memory's created_at so retention tests don't sleep.
func backdate(t *testing.T, s *SQLiteStore, id string, age time.Duration) {
	t.Helper()
	ts := time.Now().UTC().Add(-age).Format(time.RFC3339Nano)
	if _, err := s.db.Exec(`UPDATE memories SET created_at = ? WHERE id = ?`, ts, id); err != nil {
		t.Fatalf("backdate %s: %v", id, err)
	}
}

func TestEvictWorking_Retention(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	old := remember(t, s, "stale scratch note", model.Working, 0.3)
	fresh := remember(t, s, "fresh scratch note", model.Working, 0.3)
	keeper := remember(t, s, "long lived fact", model.Semantic, 0.9)
	backdate(t, s, old.ID, 2*time.Hour)
	backdate(t, s, keeper.ID, 2*time.Hour)

	n, err := s.EvictWorking(ctx)
	if err != nil {
		t.Fatalf("evict: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}

	if got, _ := s.RecallByID(ctx, old.ID); got != nil {
		t.Error("expired working memory should be gone")
	}
	if got, _ := s.RecallByID(ctx, fresh.ID); got == nil {
		t.Error("fresh working memory should survive")
	}
	if got, _ := s.RecallByID(ctx, keeper.ID); got == nil {
		t.Error("non-working memory must never be evicted by the sweep")
	}
}

func TestEvictWorking_CountCap(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(Options{Path: filepath.Join(dir, "test.db"), WorkingMaxEntries: 2})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ids := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		m := remember(t, s, "note "+string(rune('a'+i)), model.Working, 0.3)
		ids = append(ids, m.ID)
	}

	n, err := s.EvictWorking(ctx)
	if err != nil {
		t.Fatalf("evict: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 evictions beyond the cap, got %d", n)
	}

	// The two oldest went; the two newest stayed.
	for _, id := range ids[:2] {
		if got, _ := s.RecallByID(ctx, id); got != nil {
			t.Errorf("expected %s evicted", id)
		}
	}
	for _, id := range ids[2:] {
		if got, _ := s.RecallByID(ctx, id); got == nil {
			t.Errorf("expected %s retained", id)
		}
	}
}

func TestEvictWorking_RemovesFromIndex(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m := remember(t, s, "ephemeral working context", model.Working, 0.3)
	backdate(t, s, m.ID, 2*time.Hour)

	if _, err := s.EvictWorking(ctx); err != nil {
		t.Fatalf("evict: %v", err)
	}

	got, err := s.Recall(ctx, RecallParams{Query: "ephemeral working context", Limit: 5})
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	for _, r := range got {
		if r.ID == m.ID {
			t.Error("evicted memory still reachable through similarity search")
		}
	}
}

func TestSearchWorking_ConcurrentWithEviction(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Half the entries are already past the retention window, so every
	// sweep has something to delete while searches are in flight.
	for i := 0; i < 16; i++ {
		m := remember(t, s, "scratch context "+string(rune('a'+i)), model.Working, 0.3)
		if i%2 == 0 {
			backdate(t, s, m.ID, 2*time.Hour)
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				got, err := s.SearchWorking(ctx, "scratch context", 20)
				if err != nil {
					t.Errorf("search during sweep: %v", err)
					return
				}
				for _, m := range got {
					if m.Type != model.Working {
						t.Errorf("non-working memory in result: %s", m.Type)
					}
					if m.ID == "" || m.Content == "" {
						t.Errorf("torn read: %+v", m)
					}
				}
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if _, err := s.EvictWorking(ctx); err != nil {
					t.Errorf("evict during search: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestSearchWorking_SkipsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	old := remember(t, s, "expired task context", model.Working, 0.3)
	fresh := remember(t, s, "active task context", model.Working, 0.3)
	backdate(t, s, old.ID, 2*time.Hour)

	got, err := s.SearchWorking(ctx, "task context", 10)
	if err != nil {
		t.Fatalf("search working: %v", err)
	}
	if len(got) != 1 || got[0].ID != fresh.ID {
		t.Errorf("expected only the fresh entry, got %+v", got)
	}
}
