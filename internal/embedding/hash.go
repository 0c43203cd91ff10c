package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// HashEmbedder produces deterministic pseudo-embeddings from text hashes.
// It needs no external service, which makes it the offline default and
// the test embedder. Vectors are stable across calls and normalized, but
// carry no real semantics: identical text maps to an identical vector,
// and token overlap raises similarity a little.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates a hash-based embedder. dims <= 0 selects the
// default of 384 (matching all-minilm).
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 384
	}
	return &HashEmbedder{dims: dims}
}

func (e *HashEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmpty
	}

	vec := make(Vector, e.dims)

	// Sum a token-level vector so texts sharing words land nearer each
	// other than unrelated texts.
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		h.Write([]byte(tok))
		seed := h.Sum64()
		for i := 0; i < e.dims; i++ {
			// LCG step per dimension
			seed = seed*6364136223846793005 + 1442695040888963407
			vec[i] += float32(int64(seed)) / float32(math.MaxInt64)
		}
	}

	return normalize(vec), nil
}

func (e *HashEmbedder) Dims() int { return e.dims }

func normalize(vec Vector) Vector {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	n := float32(math.Sqrt(norm))
	for i, v := range vec {
		vec[i] = v / n
	}
	return vec
}
