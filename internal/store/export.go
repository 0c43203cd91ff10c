package store

import (
	"context"
	"time"

	"github.com/cogmem/cogmem/internal/model"
)

// Export is a dump of memories and relation edges. Embeddings are not
// exported; Import recomputes them so content and vector stay consistent.
type Export struct {
	Memories  []model.Memory   `json:"memories"`
	Relations []model.Relation `json:"relations"`
}

// ExportAll dumps all memories (oldest first) and all relation edges.
func (s *SQLiteStore) ExportAll(ctx context.Context) (*Export, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memCols+` FROM memories ORDER BY created_at, id`)
	if err != nil {
		return nil, storageErr("export memories", err)
	}
	memories, err := collectMemories(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT source_id, target_id, kind, created_at FROM memory_relations ORDER BY created_at`)
	if err != nil {
		return nil, storageErr("export relations", err)
	}
	defer rows.Close()

	relations := []model.Relation{}
	for rows.Next() {
		var r model.Relation
		var kind, createdAt string
		if err := rows.Scan(&r.SourceID, &r.TargetID, &kind, &createdAt); err != nil {
			return nil, storageErr("export relations", err)
		}
		r.Kind = model.RelationKind(kind)
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		relations = append(relations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("export relations", err)
	}

	return &Export{Memories: memories, Relations: relations}, nil
}

// Import replays an export through the normal write path. Memories get
// fresh ids and recomputed embeddings; relation endpoints are remapped to
// the new ids where they referenced imported memories, and kept as-is
// where they reference belief ids or concept labels. Returns the number
// of imported memories.
func (s *SQLiteStore) Import(ctx context.Context, exp *Export) (int, error) {
	idMap := make(map[string]string, len(exp.Memories))
	imported := 0
	for _, m := range exp.Memories {
		stored, err := s.Remember(ctx, RememberParams{
			Content:    m.Content,
			Type:       m.Type,
			Importance: m.Importance,
			Valence:    m.Valence,
		})
		if err != nil {
			return imported, err
		}
		idMap[m.ID] = stored.ID
		imported++
	}

	for _, r := range exp.Relations {
		source, ok := idMap[r.SourceID]
		if !ok {
			// Source was not part of this export; nothing to attach.
			continue
		}
		target := r.TargetID
		if mapped, ok := idMap[r.TargetID]; ok {
			target = mapped
		}
		if err := s.Link(ctx, source, target, r.Kind); err != nil {
			return imported, err
		}
	}

	return imported, nil
}
