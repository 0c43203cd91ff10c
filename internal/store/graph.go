package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cogmem/cogmem/internal/model"
)

// Link inserts a directed edge. Duplicate (source, target, kind) edges are
// ignored. The source must resolve to a stored memory; for
// LINKED_TO_CONCEPT the target is a concept label and need not pre-exist,
// for every other kind the target is a free reference (memory or belief
// id) whose validity is checked at traversal time.
func (s *SQLiteStore) Link(ctx context.Context, sourceID, targetID string, kind model.RelationKind) error {
	if !model.ValidRelationKinds[kind] {
		return validationErr("unknown relation kind %q", kind)
	}

	target := targetID
	if kind == model.LinkedToConcept {
		target = normalizeConcept(targetID)
		if target == "" {
			return validationErr("empty concept name")
		}
	} else if target == "" {
		return validationErr("empty target id")
	}

	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM memories WHERE id = ?`, sourceID).Scan(&exists)
	if err == sql.ErrNoRows {
		return notFoundErr("link source", sourceID)
	}
	if err != nil {
		return storageErr("resolve link source", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO memory_relations (source_id, target_id, kind, created_at)
		 VALUES (?, ?, ?, ?)`,
		sourceID, target, string(kind), now)
	if err != nil {
		return storageErr("insert relation", err)
	}
	return nil
}

// FindCauses returns memories recorded as causing the given memory:
// direct predecessors along CAUSES edges, most recently linked first.
// Traversal is deliberately fixed at one hop. An unknown id yields empty.
func (s *SQLiteStore) FindCauses(ctx context.Context, memoryID string) ([]model.Memory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+prefixedMemCols("m")+`
		 FROM memory_relations r
		 JOIN memories m ON m.id = r.source_id
		 WHERE r.target_id = ? AND r.kind = ?
		 ORDER BY r.created_at DESC, m.id DESC`,
		memoryID, string(model.Causes))
	if err != nil {
		return nil, storageErr("find causes", err)
	}
	defer rows.Close()
	return collectMemories(rows)
}

// FindContradictions returns CONTRADICTS pairs, most recently linked
// first, capped at limit.
func (s *SQLiteStore) FindContradictions(ctx context.Context, limit int) ([]model.ContradictionPair, error) {
	if limit <= 0 {
		return []model.ContradictionPair{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.created_at, `+prefixedMemCols("a")+`, `+prefixedMemCols("b")+`
		 FROM memory_relations r
		 JOIN memories a ON a.id = r.source_id
		 JOIN memories b ON b.id = r.target_id
		 WHERE r.kind = ?
		 ORDER BY r.created_at DESC, r.source_id DESC
		 LIMIT ?`,
		string(model.Contradicts), limit)
	if err != nil {
		return nil, storageErr("find contradictions", err)
	}
	defer rows.Close()

	pairs := []model.ContradictionPair{}
	for rows.Next() {
		var linkedAt string
		var src, tgt model.Memory
		var srcType, srcCreated, tgtType, tgtCreated string
		var srcValence, tgtValence sql.NullFloat64

		err := rows.Scan(&linkedAt,
			&src.ID, &src.Content, &srcType, &src.Importance, &srcValence, &srcCreated,
			&tgt.ID, &tgt.Content, &tgtType, &tgt.Importance, &tgtValence, &tgtCreated)
		if err != nil {
			return nil, storageErr("find contradictions", err)
		}

		src.Type = model.MemoryType(srcType)
		src.CreatedAt, _ = time.Parse(time.RFC3339Nano, srcCreated)
		if srcValence.Valid {
			v := srcValence.Float64
			src.Valence = &v
		}
		tgt.Type = model.MemoryType(tgtType)
		tgt.CreatedAt, _ = time.Parse(time.RFC3339Nano, tgtCreated)
		if tgtValence.Valid {
			v := tgtValence.Float64
			tgt.Valence = &v
		}

		pair := model.ContradictionPair{Source: src, Target: tgt}
		pair.LinkedAt, _ = time.Parse(time.RFC3339Nano, linkedAt)
		pairs = append(pairs, pair)
	}
	return pairs, rows.Err()
}

// FindSupportingEvidence returns memories with a SUPPORTS edge into the
// given belief, by supporting memory importance descending. An unknown
// belief id yields an empty result.
func (s *SQLiteStore) FindSupportingEvidence(ctx context.Context, worldviewID string, limit int) ([]model.Memory, error) {
	if limit <= 0 {
		return []model.Memory{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+prefixedMemCols("m")+`
		 FROM memory_relations r
		 JOIN memories m ON m.id = r.source_id
		 WHERE r.kind = ? AND r.target_id = ?
		 ORDER BY m.importance DESC, m.created_at DESC
		 LIMIT ?`,
		string(model.Supports), worldviewID, limit)
	if err != nil {
		return nil, storageErr("find supporting evidence", err)
	}
	defer rows.Close()
	return collectMemories(rows)
}

// FindByConcept returns memories linked to the concept label (exact,
// case-normalized match), by importance descending.
func (s *SQLiteStore) FindByConcept(ctx context.Context, concept string, limit int) ([]model.Memory, error) {
	if limit <= 0 {
		return []model.Memory{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+prefixedMemCols("m")+`
		 FROM memory_relations r
		 JOIN memories m ON m.id = r.source_id
		 WHERE r.kind = ? AND r.target_id = ?
		 ORDER BY m.importance DESC, m.created_at DESC
		 LIMIT ?`,
		string(model.LinkedToConcept), normalizeConcept(concept), limit)
	if err != nil {
		return nil, storageErr("find by concept", err)
	}
	defer rows.Close()
	return collectMemories(rows)
}

func normalizeConcept(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func prefixedMemCols(alias string) string {
	cols := strings.Split(memCols, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

func collectMemories(rows *sql.Rows) ([]model.Memory, error) {
	memories := []model.Memory{}
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, storageErr("scan memory", err)
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}
