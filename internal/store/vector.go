package store

import (
	"context"

	chromem "github.com/philippgille/chromem-go"

	"github.com/cogmem/cogmem/internal/model"
)

// vectorIndex wraps a chromem-go collection as the nearest-neighbor engine
// over the durable rows. It is rebuilt from SQLite at open and kept in
// step on writes and evictions; SQLite stays the source of truth.
type vectorIndex struct {
	col *chromem.Collection
}

// hit is one nearest-neighbor candidate.
type hit struct {
	id         string
	similarity float64
}

func newVectorIndex() (*vectorIndex, error) {
	db := chromem.NewDB()
	// No embedding func: vectors are always supplied by the store.
	col, err := db.CreateCollection("memories", nil, nil)
	if err != nil {
		return nil, err
	}
	return &vectorIndex{col: col}, nil
}

func (x *vectorIndex) add(ctx context.Context, id string, typ model.MemoryType, vec []float32) error {
	return x.col.AddDocument(ctx, chromem.Document{
		ID:        id,
		Embedding: vec,
		Metadata:  map[string]string{"type": string(typ)},
		Content:   id, // chromem requires content; the store never reads it back
	})
}

func (x *vectorIndex) remove(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return x.col.Delete(ctx, nil, nil, ids...)
}

// query returns every candidate's similarity, best first, optionally
// filtered by type. chromem's top-k cut knows nothing about recency, so
// any cut that depends on the tie-break order belongs to the caller;
// the index always hands back the full filtered candidate set. chromem
// scores all documents regardless, so this costs no extra work, and
// nResults is pinned at the collection size chromem requires.
func (x *vectorIndex) query(ctx context.Context, vec []float32, typ model.MemoryType) ([]hit, error) {
	n := x.col.Count()
	if n == 0 {
		return nil, nil
	}

	var where map[string]string
	if typ != "" {
		where = map[string]string{"type": string(typ)}
	}

	results, err := x.col.QueryEmbedding(ctx, vec, n, where, nil)
	if err != nil {
		return nil, err
	}

	hits := make([]hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, hit{id: r.ID, similarity: float64(r.Similarity)})
	}
	return hits, nil
}
