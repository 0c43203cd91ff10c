package store

import (
	"context"
	"strings"
	"time"

	"github.com/cogmem/cogmem/internal/model"
)

// EvictWorking applies the WORKING retention policy once: entries older
// than the retention window are removed, and the newest WorkingMaxEntries
// are kept regardless of age. Returns the number of evicted entries.
// Searches never race with this: search_working scores candidates inside
// a single SQL scan, so it always sees a consistent set.
func (s *SQLiteStore) EvictWorking(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.opts.WorkingRetention).Format(time.RFC3339Nano)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM memories WHERE type = ? AND created_at <= ?
		 UNION
		 SELECT id FROM (
			SELECT id FROM memories WHERE type = ?
			ORDER BY created_at DESC, id DESC LIMIT -1 OFFSET ?
		 )`,
		string(model.Working), cutoff, string(model.Working), s.opts.WorkingMaxEntries)
	if err != nil {
		return 0, storageErr("evict working: select", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, storageErr("evict working: scan", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, storageErr("evict working", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM memories WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return 0, storageErr("evict working: delete", err)
	}

	if err := s.index.remove(ctx, ids...); err != nil {
		return 0, storageErr("evict working: deindex", err)
	}
	return len(ids), nil
}

// sweepLoop runs the retention sweep until Close.
func (s *SQLiteStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			n, err := s.EvictWorking(context.Background())
			if err != nil {
				s.log.Warn("working sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.log.Debug("working sweep", "evicted", n)
			}
		}
	}
}
