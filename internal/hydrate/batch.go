package hydrate

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cogmem/cogmem/internal/model"
	"github.com/cogmem/cogmem/internal/store"
)

// RecallResult is one slot of a batched recall. Err is set and Memories
// empty when that query failed; siblings are unaffected.
type RecallResult struct {
	Memories []model.ScoredMemory `json:"memories"`
	Err      error                `json:"-"`
}

// HydrateResult is one slot of a batched hydration.
type HydrateResult struct {
	Context *model.Context `json:"context,omitempty"`
	Err     error          `json:"-"`
}

// PartialFailure reports which slots of a batch failed. A batch call
// returns it (non-nil) only when at least one slot failed.
type PartialFailure struct {
	Total int
	Errs  map[int]error // slot index -> failure
}

func (p *PartialFailure) Error() string {
	return fmt.Sprintf("%d of %d batch queries failed", len(p.Errs), p.Total)
}

// Indexes returns the failed slot indexes in ascending order.
func (p *PartialFailure) Indexes() []int {
	idx := make([]int, 0, len(p.Errs))
	for i := range p.Errs {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// RecallBatch runs Recall for each query concurrently, bounded by the
// configured concurrency. result[i] always corresponds to queries[i];
// a failing query yields an empty slot with its own error while the
// others complete normally.
func (e *Engine) RecallBatch(ctx context.Context, queries []string, limit int) ([]RecallResult, error) {
	results := make([]RecallResult, len(queries))

	e.forEach(ctx, len(queries), func(ctx context.Context, i int) {
		memories, err := e.store.Recall(ctx, store.RecallParams{Query: queries[i], Limit: limit})
		if err != nil {
			e.log.Debug("recall batch slot failed", "index", i, "error", err)
			results[i] = RecallResult{Memories: []model.ScoredMemory{}, Err: err}
			return
		}
		results[i] = RecallResult{Memories: memories}
	})

	if pf := collectFailures(len(queries), func(i int) error { return results[i].Err }); pf != nil {
		return results, pf
	}
	return results, nil
}

// HydrateBatch runs a default-parameter hydration for each query
// concurrently with the same ordering and isolation guarantees as
// RecallBatch.
func (e *Engine) HydrateBatch(ctx context.Context, queries []string, memoryLimit int) ([]HydrateResult, error) {
	results := make([]HydrateResult, len(queries))

	e.forEach(ctx, len(queries), func(ctx context.Context, i int) {
		p := DefaultParams(queries[i])
		p.MemoryLimit = memoryLimit
		hctx, err := e.Hydrate(ctx, p)
		if err != nil {
			e.log.Debug("hydrate batch slot failed", "index", i, "error", err)
			results[i] = HydrateResult{Err: err}
			return
		}
		results[i] = HydrateResult{Context: hctx}
	})

	if pf := collectFailures(len(queries), func(i int) error { return results[i].Err }); pf != nil {
		return results, pf
	}
	return results, nil
}

// forEach fans fn out over n slots with a buffered-channel semaphore
// bounding concurrency. Each slot writes only its own result, so no
// locking is needed on the results slice.
func (e *Engine) forEach(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.opts.Concurrency)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			fn(ctx, i)
		}(i)
	}
	wg.Wait()
}

func collectFailures(total int, errAt func(int) error) *PartialFailure {
	var errs map[int]error
	for i := 0; i < total; i++ {
		if err := errAt(i); err != nil {
			if errs == nil {
				errs = map[int]error{}
			}
			errs[i] = err
		}
	}
	if errs == nil {
		return nil
	}
	return &PartialFailure{Total: total, Errs: errs}
}
