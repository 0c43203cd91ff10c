package store

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers detect categories with errors.Is; lookup-style
// misses (RecallByID on an unknown id, evidence for an unknown belief)
// are normal empty results, not errors.
var (
	// ErrValidation marks out-of-range or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrEmbedding marks input the embedding gateway cannot vectorize.
	ErrEmbedding = errors.New("embedding failed")
	// ErrNotFound marks a missing record where existence is required.
	ErrNotFound = errors.New("not found")
	// ErrStorage marks a durable-storage I/O failure.
	ErrStorage = errors.New("storage failure")
)

func validationErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundErr(what, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, what, id)
}

func embeddingErr(err error) error {
	return fmt.Errorf("%w: %v", ErrEmbedding, err)
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStorage, err))
}
