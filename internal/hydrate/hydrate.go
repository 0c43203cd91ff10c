// Package hydrate assembles bounded, relevance-ranked context bundles
// from the memory store, and fans batched queries out against it.
package hydrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cogmem/cogmem/internal/model"
	"github.com/cogmem/cogmem/internal/store"
)

// Options configures an Engine.
type Options struct {
	MemoryLimit   int          // default memory limit per hydration (default 10)
	MinSimilarity float64      // floor applied when IncludePartial is false (default 0.4)
	Concurrency   int          // batch fan-out bound (default 4)
	Logger        *slog.Logger // nil selects slog.Default()
}

const (
	defaultMemoryLimit   = 10
	defaultMinSimilarity = 0.4
	defaultConcurrency   = 4
)

// Params selects what a single hydration returns. Sections that are not
// requested are omitted from the Context entirely.
type Params struct {
	Query                 string
	MemoryLimit           int
	IncludePartial        bool
	IncludeIdentity       bool
	IncludeWorldview      bool
	IncludeEmotionalState bool
	IncludeGoals          bool
	IncludeDrives         bool
}

// DefaultParams returns the standard hydration request: partial matches
// kept, identity/worldview/emotional-state/drives included, goals not.
func DefaultParams(query string) Params {
	return Params{
		Query:                 query,
		IncludePartial:        true,
		IncludeIdentity:       true,
		IncludeWorldview:      true,
		IncludeEmotionalState: true,
		IncludeGoals:          false,
		IncludeDrives:         true,
	}
}

// Engine orchestrates the store to answer hydration queries.
type Engine struct {
	store store.Store
	opts  Options
	log   *slog.Logger
}

// New creates a hydration engine over the given store.
func New(st store.Store, opts Options) *Engine {
	if opts.MemoryLimit <= 0 {
		opts.MemoryLimit = defaultMemoryLimit
	}
	if opts.MinSimilarity <= 0 {
		opts.MinSimilarity = defaultMinSimilarity
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{store: st, opts: opts, log: opts.Logger}
}

// Hydrate runs similarity recall for the query and bundles it with the
// requested auxiliary sections. Recall failure is fatal to the call;
// each auxiliary section degrades to its empty value on failure so one
// broken section never aborts the whole hydration.
func (e *Engine) Hydrate(ctx context.Context, p Params) (*model.Context, error) {
	limit := p.MemoryLimit
	if limit <= 0 {
		limit = e.opts.MemoryLimit
	}

	scored, err := e.store.Recall(ctx, store.RecallParams{Query: p.Query, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("recall: %w", err)
	}
	if !p.IncludePartial {
		kept := scored[:0]
		for _, m := range scored {
			if m.Similarity >= e.opts.MinSimilarity {
				kept = append(kept, m)
			}
		}
		scored = kept
	}

	out := &model.Context{Query: p.Query, Memories: scored}

	if p.IncludeIdentity {
		out.Identity = []model.IdentityAspect{}
		if identity, err := e.store.Identity(ctx); err != nil {
			e.log.Warn("hydrate: identity section degraded", "error", err)
		} else {
			out.Identity = identity
		}
	}
	if p.IncludeWorldview {
		out.Worldview = []model.WorldviewBelief{}
		if worldview, err := e.store.Worldview(ctx); err != nil {
			e.log.Warn("hydrate: worldview section degraded", "error", err)
		} else {
			out.Worldview = worldview
		}
	}
	if p.IncludeGoals {
		out.Goals = []model.Goal{}
		if goals, err := e.store.Goals(ctx, ""); err != nil {
			e.log.Warn("hydrate: goals section degraded", "error", err)
		} else {
			out.Goals = goals
		}
	}
	if p.IncludeDrives {
		out.Drives = map[string]float64{}
		if drives, err := e.store.Drives(ctx); err != nil {
			e.log.Warn("hydrate: drives section degraded", "error", err)
		} else {
			out.Drives = drives
		}
	}
	if p.IncludeEmotionalState {
		out.Emotional = &model.EmotionalState{}
		if emo, err := e.store.Emotion(ctx); err != nil {
			e.log.Warn("hydrate: emotional section degraded", "error", err)
		} else if emo != nil {
			out.Emotional = emo
		}
	}

	return out, nil
}
