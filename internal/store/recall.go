package store

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/cogmem/cogmem/internal/embedding"
	"github.com/cogmem/cogmem/internal/model"
)

// Recall embeds the query and ranks stored memories by cosine similarity
// descending; ties break toward more recently created memories.
func (s *SQLiteStore) Recall(ctx context.Context, p RecallParams) ([]model.ScoredMemory, error) {
	if p.Limit <= 0 {
		return []model.ScoredMemory{}, nil
	}
	if p.Type != "" && !model.ValidMemoryTypes[p.Type] {
		return nil, validationErr("unknown memory type %q", p.Type)
	}

	qvec, err := s.embedder.Embed(ctx, p.Query)
	if err != nil {
		return nil, embeddingErr(err)
	}

	hits, err := s.index.query(ctx, qvec, p.Type)
	if err != nil {
		return nil, storageErr("vector query", err)
	}
	if len(hits) == 0 {
		return []model.ScoredMemory{}, nil
	}

	byID, err := s.loadMemories(ctx, hitIDs(hits))
	if err != nil {
		return nil, err
	}

	scored := make([]model.ScoredMemory, 0, len(hits))
	for _, h := range hits {
		m, ok := byID[h.id]
		if !ok {
			// Evicted between index query and load. The candidate set
			// spans the whole corpus, so survivors backfill the slot.
			continue
		}
		scored = append(scored, model.ScoredMemory{Memory: m, Similarity: h.similarity})
	}

	sortScored(scored)
	if len(scored) > p.Limit {
		scored = scored[:p.Limit]
	}
	return scored, nil
}

// SearchWorking ranks WORKING memories by similarity to the query. The
// candidate set is read and scored within a single SQL scan, so a
// concurrent eviction sweep cannot mutate an in-progress search's view.
func (s *SQLiteStore) SearchWorking(ctx context.Context, query string, limit int) ([]model.ScoredMemory, error) {
	if limit <= 0 {
		return []model.ScoredMemory{}, nil
	}

	qvec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, embeddingErr(err)
	}

	// On-access sweep; a failure here must not break the search.
	if n, err := s.EvictWorking(ctx); err != nil {
		s.log.Warn("working sweep failed", "error", err)
	} else if n > 0 {
		s.log.Debug("working sweep", "evicted", n)
	}

	cutoff := time.Now().UTC().Add(-s.opts.WorkingRetention).Format(time.RFC3339Nano)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memCols+`, embedding FROM memories
		 WHERE type = ? AND created_at > ?`,
		string(model.Working), cutoff)
	if err != nil {
		return nil, storageErr("search working", err)
	}
	defer rows.Close()

	scored := []model.ScoredMemory{}
	for rows.Next() {
		var m model.Memory
		var typ, createdAt string
		var valence sql.NullFloat64
		var blob []byte
		if err := rows.Scan(&m.ID, &m.Content, &typ, &m.Importance, &valence, &createdAt, &blob); err != nil {
			return nil, storageErr("search working", err)
		}
		m.Type = model.MemoryType(typ)
		if valence.Valid {
			v := valence.Float64
			m.Valence = &v
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

		sim := embedding.CosineSimilarity(qvec, decodeVector(blob))
		scored = append(scored, model.ScoredMemory{Memory: m, Similarity: sim})
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("search working", err)
	}

	sortScored(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// loadMemories fetches the given ids into a map. Missing ids are simply
// absent from the result.
func (s *SQLiteStore) loadMemories(ctx context.Context, ids []string) (map[string]model.Memory, error) {
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memCols+` FROM memories WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, storageErr("load memories", err)
	}
	defer rows.Close()

	byID := make(map[string]model.Memory, len(ids))
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, storageErr("load memories", err)
		}
		byID[m.ID] = m
	}
	return byID, rows.Err()
}

func hitIDs(hits []hit) []string {
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}

// sortScored orders by similarity descending; equal similarity breaks
// toward the more recent memory (ULIDs sort by creation time).
func sortScored(scored []model.ScoredMemory) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		if !scored[i].CreatedAt.Equal(scored[j].CreatedAt) {
			return scored[i].CreatedAt.After(scored[j].CreatedAt)
		}
		return scored[i].ID > scored[j].ID
	})
}
