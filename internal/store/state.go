package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cogmem/cogmem/internal/model"
)

// Identity returns the latest revision of each identity aspect.
func (s *SQLiteStore) Identity(ctx context.Context) ([]model.IdentityAspect, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT aspect_type, content, created_at FROM identity_aspects
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, storageErr("identity", err)
	}
	defer rows.Close()

	seen := map[model.AspectType]bool{}
	aspects := []model.IdentityAspect{}
	for rows.Next() {
		var a model.IdentityAspect
		var typ, createdAt string
		if err := rows.Scan(&typ, &a.Content, &createdAt); err != nil {
			return nil, storageErr("identity", err)
		}
		a.AspectType = model.AspectType(typ)
		if seen[a.AspectType] {
			continue
		}
		seen[a.AspectType] = true
		a.UpdatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		aspects = append(aspects, a)
	}
	return aspects, rows.Err()
}

// PutIdentity records a new revision of an identity aspect.
func (s *SQLiteStore) PutIdentity(ctx context.Context, aspect model.AspectType, content string) error {
	if !model.ValidAspectTypes[aspect] {
		return validationErr("unknown aspect type %q", aspect)
	}
	if strings.TrimSpace(content) == "" {
		return validationErr("empty aspect content")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO identity_aspects (id, aspect_type, content, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), string(aspect), content, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return storageErr("put identity", err)
	}
	return nil
}

// Worldview returns all beliefs.
func (s *SQLiteStore) Worldview(ctx context.Context) ([]model.WorldviewBelief, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, belief, category, confidence, created_at FROM worldview
		 ORDER BY category, created_at`)
	if err != nil {
		return nil, storageErr("worldview", err)
	}
	defer rows.Close()

	beliefs := []model.WorldviewBelief{}
	for rows.Next() {
		var b model.WorldviewBelief
		var createdAt string
		if err := rows.Scan(&b.ID, &b.Belief, &b.Category, &b.Confidence, &createdAt); err != nil {
			return nil, storageErr("worldview", err)
		}
		b.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		beliefs = append(beliefs, b)
	}
	return beliefs, rows.Err()
}

// PutBelief stores a worldview belief and returns it.
func (s *SQLiteStore) PutBelief(ctx context.Context, belief, category string, confidence float64) (*model.WorldviewBelief, error) {
	if strings.TrimSpace(belief) == "" {
		return nil, validationErr("empty belief")
	}
	if confidence < 0 || confidence > 1 {
		return nil, validationErr("confidence %g out of range [0, 1]", confidence)
	}

	b := &model.WorldviewBelief{
		ID:         uuid.NewString(),
		Belief:     belief,
		Category:   category,
		Confidence: confidence,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO worldview (id, belief, category, confidence, created_at) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Belief, b.Category, b.Confidence, b.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, storageErr("put belief", err)
	}
	return b, nil
}

// Goals returns goals, filtered by priority when given.
func (s *SQLiteStore) Goals(ctx context.Context, priority model.GoalPriority) ([]model.Goal, error) {
	if priority != "" && !model.ValidGoalPriorities[priority] {
		return nil, validationErr("unknown goal priority %q", priority)
	}

	query := `SELECT id, title, description, priority, created_at FROM goals`
	args := []interface{}{}
	if priority != "" {
		query += ` WHERE priority = ?`
		args = append(args, string(priority))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("goals", err)
	}
	defer rows.Close()

	goals := []model.Goal{}
	for rows.Next() {
		var g model.Goal
		var desc sql.NullString
		var prio, createdAt string
		if err := rows.Scan(&g.ID, &g.Title, &desc, &prio, &createdAt); err != nil {
			return nil, storageErr("goals", err)
		}
		g.Description = desc.String
		g.Priority = model.GoalPriority(prio)
		g.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// PutGoal stores a goal. Priority defaults to ACTIVE.
func (s *SQLiteStore) PutGoal(ctx context.Context, title, description string, priority model.GoalPriority) (*model.Goal, error) {
	if strings.TrimSpace(title) == "" {
		return nil, validationErr("empty goal title")
	}
	if priority == "" {
		priority = model.GoalActive
	}
	if !model.ValidGoalPriorities[priority] {
		return nil, validationErr("unknown goal priority %q", priority)
	}

	g := &model.Goal{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Priority:    priority,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (id, title, description, priority, created_at) VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.Title, g.Description, string(g.Priority), g.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, storageErr("put goal", err)
	}
	return g, nil
}

// Drives returns the current drive levels by name.
func (s *SQLiteStore) Drives(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, level FROM drives`)
	if err != nil {
		return nil, storageErr("drives", err)
	}
	defer rows.Close()

	drives := map[string]float64{}
	for rows.Next() {
		var name string
		var level float64
		if err := rows.Scan(&name, &level); err != nil {
			return nil, storageErr("drives", err)
		}
		drives[name] = level
	}
	return drives, rows.Err()
}

// SetDrive upserts a drive level. Level must lie in [0, max].
func (s *SQLiteStore) SetDrive(ctx context.Context, name string, level, max float64) error {
	if strings.TrimSpace(name) == "" {
		return validationErr("empty drive name")
	}
	if max <= 0 {
		return validationErr("drive max must be positive, got %g", max)
	}
	if level < 0 || level > max {
		return validationErr("drive level %g out of range [0, %g]", level, max)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO drives (name, level, max, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET level = excluded.level, max = excluded.max, updated_at = excluded.updated_at`,
		name, level, max, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return storageErr("set drive", err)
	}
	return nil
}

// Emotion returns the current emotional state: the latest dedicated
// record if any, else the latest EPISODIC memory's valence, else nil.
func (s *SQLiteStore) Emotion(ctx context.Context) (*model.EmotionalState, error) {
	var e model.EmotionalState
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT emotion, valence, created_at FROM emotional_state
		 ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&e.Emotion, &e.Valence, &createdAt)
	if err == nil {
		e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		return &e, nil
	}
	if err != sql.ErrNoRows {
		return nil, storageErr("emotion", err)
	}

	// Fall back to the latest episodic valence.
	err = s.db.QueryRowContext(ctx,
		`SELECT valence, created_at FROM memories
		 WHERE type = ? AND valence IS NOT NULL
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		string(model.Episodic)).Scan(&e.Valence, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("emotion", err)
	}
	e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &e, nil
}

// SetEmotion records an emotional state.
func (s *SQLiteStore) SetEmotion(ctx context.Context, emotion string, valence float64) error {
	if strings.TrimSpace(emotion) == "" {
		return validationErr("empty emotion")
	}
	if valence < -1 || valence > 1 {
		return validationErr("valence %g out of range [-1, 1]", valence)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO emotional_state (id, emotion, valence, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), emotion, valence, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return storageErr("set emotion", err)
	}
	return nil
}
