package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/cogmem/cogmem/internal/embedding"
	"github.com/cogmem/cogmem/internal/model"
)

// Options configures a SQLiteStore at construction.
type Options struct {
	Path              string
	Embedder          embedding.Embedder // nil selects the offline hash embedder
	Logger            *slog.Logger       // nil selects slog.Default()
	WorkingRetention  time.Duration      // age window for WORKING entries (default 1h)
	WorkingMaxEntries int                // count cap for WORKING entries (default 256)
	SweepInterval     time.Duration      // 0 disables the background sweep
}

const (
	defaultWorkingRetention = time.Hour
	defaultWorkingMax       = 256
	staleWindow             = 7 * 24 * time.Hour
	urgentDriveThreshold    = 0.8
)

// SQLiteStore implements Store on a single SQLite file, with an in-memory
// vector index over the stored embeddings for the nearest-neighbor step.
type SQLiteStore struct {
	db       *sql.DB
	embedder embedding.Embedder
	index    *vectorIndex
	opts     Options
	log      *slog.Logger
	done     chan struct{}
}

// New opens or creates a store at opts.Path.
func New(opts Options) (*SQLiteStore, error) {
	dir := filepath.Dir(opts.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", opts.Path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if opts.Embedder == nil {
		opts.Embedder = embedding.NewHashEmbedder(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.WorkingRetention <= 0 {
		opts.WorkingRetention = defaultWorkingRetention
	}
	if opts.WorkingMaxEntries <= 0 {
		opts.WorkingMaxEntries = defaultWorkingMax
	}

	s := &SQLiteStore{
		db:       db,
		embedder: opts.Embedder,
		opts:     opts,
		log:      opts.Logger,
		done:     make(chan struct{}),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	idx, err := newVectorIndex()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("vector index: %w", err)
	}
	s.index = idx
	if err := s.rebuildIndex(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("rebuild index: %w", err)
	}

	if opts.SweepInterval > 0 {
		go s.sweepLoop(opts.SweepInterval)
	}

	return s, nil
}

func newID() string {
	return ulid.Make().String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id          TEXT PRIMARY KEY,
		content     TEXT NOT NULL,
		type        TEXT NOT NULL,
		importance  REAL NOT NULL,
		valence     REAL,
		embedding   BLOB NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_memories_type_created ON memories(type, created_at DESC);

	CREATE TABLE IF NOT EXISTS memory_relations (
		source_id  TEXT NOT NULL,
		target_id  TEXT NOT NULL,
		kind       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (source_id, target_id, kind)
	);
	CREATE INDEX IF NOT EXISTS idx_relations_target ON memory_relations(target_id, kind);
	CREATE INDEX IF NOT EXISTS idx_relations_kind_created ON memory_relations(kind, created_at DESC);

	CREATE TABLE IF NOT EXISTS worldview (
		id         TEXT PRIMARY KEY,
		belief     TEXT NOT NULL,
		category   TEXT NOT NULL,
		confidence REAL NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS identity_aspects (
		id          TEXT PRIMARY KEY,
		aspect_type TEXT NOT NULL,
		content     TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_identity_type_created ON identity_aspects(aspect_type, created_at DESC);

	CREATE TABLE IF NOT EXISTS goals (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT,
		priority    TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS drives (
		name       TEXT PRIMARY KEY,
		level      REAL NOT NULL,
		max        REAL NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS emotional_state (
		id         TEXT PRIMARY KEY,
		emotion    TEXT NOT NULL,
		valence    REAL NOT NULL,
		created_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// rebuildIndex loads every stored embedding into the vector index.
func (s *SQLiteStore) rebuildIndex(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, type, embedding FROM memories`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, typ string
		var blob []byte
		if err := rows.Scan(&id, &typ, &blob); err != nil {
			return err
		}
		if err := s.index.add(ctx, id, model.MemoryType(typ), decodeVector(blob)); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Remember validates, embeds, and persists a new memory. The record and
// its embedding commit in one transaction; the index entry is added after
// commit so a returned memory is visible to subsequent recalls.
func (s *SQLiteStore) Remember(ctx context.Context, p RememberParams) (*model.Memory, error) {
	typ := p.Type
	if typ == "" {
		typ = model.Semantic
	}
	if !model.ValidMemoryTypes[typ] {
		return nil, validationErr("unknown memory type %q", typ)
	}
	if p.Importance < 0 || p.Importance > 1 {
		return nil, validationErr("importance %g out of range [0, 1]", p.Importance)
	}
	if p.Valence != nil && (*p.Valence < -1 || *p.Valence > 1) {
		return nil, validationErr("valence %g out of range [-1, 1]", *p.Valence)
	}

	content := strings.TrimSpace(p.Content)
	if content == "" {
		return nil, embeddingErr(embedding.ErrEmpty)
	}
	vec, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, embeddingErr(err)
	}

	now := time.Now().UTC()
	mem := &model.Memory{
		ID:         newID(),
		Content:    content,
		Type:       typ,
		Importance: p.Importance,
		Valence:    p.Valence,
		Embedding:  vec,
		CreatedAt:  now,
	}

	var valence sql.NullFloat64
	if p.Valence != nil {
		valence = sql.NullFloat64{Float64: *p.Valence, Valid: true}
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO memories (id, content, type, importance, valence, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		mem.ID, mem.Content, string(mem.Type), mem.Importance, valence,
		encodeVector(vec), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, storageErr("insert memory", err)
	}

	if err := s.index.add(ctx, mem.ID, mem.Type, vec); err != nil {
		return nil, storageErr("index memory", err)
	}

	return mem, nil
}

// RecallByID returns (nil, nil) when the id is unknown.
func (s *SQLiteStore) RecallByID(ctx context.Context, id string) (*model.Memory, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+memCols+` FROM memories WHERE id = ?`, id)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("recall by id", err)
	}
	return &m, nil
}

// RecallRecent returns memories by creation time descending, independent
// of similarity.
func (s *SQLiteStore) RecallRecent(ctx context.Context, limit int, typ model.MemoryType) ([]model.Memory, error) {
	if limit <= 0 {
		return []model.Memory{}, nil
	}
	if typ != "" && !model.ValidMemoryTypes[typ] {
		return nil, validationErr("unknown memory type %q", typ)
	}

	query := `SELECT ` + memCols + ` FROM memories`
	args := []interface{}{}
	if typ != "" {
		query += ` WHERE type = ?`
		args = append(args, string(typ))
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("recall recent", err)
	}
	defer rows.Close()

	memories := []model.Memory{}
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, storageErr("recall recent", err)
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

// Close stops the background sweep and closes the database.
func (s *SQLiteStore) Close() error {
	close(s.done)
	return s.db.Close()
}

const memCols = `id, content, type, importance, valence, created_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(row scanner) (model.Memory, error) {
	var m model.Memory
	var typ, createdAt string
	var valence sql.NullFloat64

	err := row.Scan(&m.ID, &m.Content, &typ, &m.Importance, &valence, &createdAt)
	if err != nil {
		return m, err
	}

	m.Type = model.MemoryType(typ)
	if valence.Valid {
		v := valence.Float64
		m.Valence = &v
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return m, nil
}

func encodeVector(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
