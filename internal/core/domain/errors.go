package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates no embedding provider is configured.
	// Ingestion and semantic search are disabled without one.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrIndexUnavailable indicates the corpus is too small for a vector
	// index. Semantic search is gated off; exact search still works.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrDimensionMismatch indicates a vector's dimension differs from the
	// store's fixed dimension. Fatal to the current ingestion or query;
	// never corrupts committed state.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStorageWrite indicates a write transaction failed and was rolled
	// back. Prior committed batches remain valid.
	ErrStorageWrite = errors.New("storage write failed")
)

// IndexUnavailableError reports that the corpus has too few embeddings
// for semantic search. It wraps ErrIndexUnavailable so callers can match
// with errors.Is while still inspecting the counts.
type IndexUnavailableError struct {
	EmbeddingCount  int
	MinimumRequired int
}

func (e *IndexUnavailableError) Error() string {
	return fmt.Sprintf("vector index unavailable: %d embeddings found, need at least %d",
		e.EmbeddingCount, e.MinimumRequired)
}

func (e *IndexUnavailableError) Unwrap() error {
	return ErrIndexUnavailable
}

// DimensionMismatchError reports an embedding whose dimension differs
// from the store's fixed dimension. Query is true when the offending
// vector came from a search query rather than ingestion, which points at
// configuration drift between ingest-time and query-time providers.
type DimensionMismatchError struct {
	Want  int
	Got   int
	Query bool
}

func (e *DimensionMismatchError) Error() string {
	if e.Query {
		return fmt.Sprintf("query embedding dimension mismatch: index dimension %d, query dimension %d", e.Want, e.Got)
	}
	return fmt.Sprintf("embedding dimension mismatch: store dimension %d, got %d", e.Want, e.Got)
}

func (e *DimensionMismatchError) Unwrap() error {
	return ErrDimensionMismatch
}
