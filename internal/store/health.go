package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cogmem/cogmem/internal/model"
)

// Health computes the rollup snapshot. Every field is an aggregate over
// the live tables at call time; nothing is cached or stored, so the
// report can never drift from the underlying state.
func (s *SQLiteStore) Health(ctx context.Context) (*model.HealthSnapshot, error) {
	h := &model.HealthSnapshot{MemoriesByType: map[model.MemoryType]int{}}
	now := time.Now().UTC()

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories`).Scan(&h.TotalMemories); err != nil {
		return nil, storageErr("health: total memories", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM memories GROUP BY type`)
	if err != nil {
		return nil, storageErr("health: memories by type", err)
	}
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			rows.Close()
			return nil, storageErr("health: memories by type", err)
		}
		h.MemoriesByType[model.MemoryType(typ)] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storageErr("health: memories by type", err)
	}

	// Stale neighborhoods: memories with no edge activity in the window.
	staleCutoff := now.Add(-staleWindow).Format(time.RFC3339Nano)
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories m
		 WHERE NOT EXISTS (
			SELECT 1 FROM memory_relations r
			WHERE (r.source_id = m.id OR r.target_id = m.id) AND r.created_at > ?
		 )`, staleCutoff).Scan(&h.StaleNeighborhoods); err != nil {
		return nil, storageErr("health: stale neighborhoods", err)
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx,
		`SELECT AVG(level / max) FROM drives WHERE max > 0`).Scan(&avg); err != nil {
		return nil, storageErr("health: avg drive", err)
	}
	h.AvgDriveLevel = avg.Float64

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM drives WHERE max > 0 AND level / max >= ?`,
		urgentDriveThreshold).Scan(&h.UrgentDrives); err != nil {
		return nil, storageErr("health: urgent drives", err)
	}

	var energy, maxEnergy sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		`SELECT level, max FROM drives WHERE name = 'energy'`).Scan(&energy, &maxEnergy)
	if err != nil && err != sql.ErrNoRows {
		return nil, storageErr("health: energy", err)
	}
	h.Energy = energy.Float64
	h.MaxEnergy = maxEnergy.Float64

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM goals WHERE priority = ?`,
		string(model.GoalActive)).Scan(&h.ActiveGoals); err != nil {
		return nil, storageErr("health: active goals", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM goals WHERE priority = ?`,
		string(model.GoalBlocked)).Scan(&h.BlockedGoals); err != nil {
		return nil, storageErr("health: blocked goals", err)
	}

	if emo, err := s.Emotion(ctx); err != nil {
		return nil, err
	} else if emo != nil {
		h.CurrentEmotion = emo.Emotion
		h.CurrentValence = emo.Valence
	}

	dayCutoff := now.Add(-24 * time.Hour).Format(time.RFC3339Nano)
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories WHERE created_at > ?`, dayCutoff).Scan(&h.MemoriesLast24h); err != nil {
		return nil, storageErr("health: memories 24h", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memory_relations WHERE created_at > ?`, dayCutoff).Scan(&h.RelationsLast24h); err != nil {
		return nil, storageErr("health: relations 24h", err)
	}

	return h, nil
}
