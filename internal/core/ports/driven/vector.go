package driven

import "github.com/custodia-labs/vectra-cli/internal/core/domain"

// VectorIndex provides nearest-neighbour search over one immutable
// snapshot of the embedding corpus. A built index keeps serving its
// snapshot until explicitly rebuilt; there is no reactive invalidation.
type VectorIndex interface {
	// Search finds the k nearest neighbours to the query vector and
	// returns them ordered by ascending distance.
	Search(query []float32, k int) ([]VectorHit, error)

	// Type identifies the index structure ("flat" or "ivf").
	Type() string

	// Size returns the number of indexed vectors.
	Size() int

	// Dimensions returns the vector dimension of the snapshot.
	Dimensions() int
}

// VectorHit is a nearest-neighbour result.
type VectorHit struct {
	// Position is the hit's position in the ascending-row-id ordering
	// the index was built from.
	Position int

	// Distance is the L2 distance to the query vector.
	Distance float64
}

// IndexBuilder constructs a vector index from stored embeddings,
// adaptively choosing the structure by corpus size. Builds are explicit
// and idempotent: the same entries yield an equivalent index.
type IndexBuilder interface {
	// Build returns an index over entries, which must be ordered by
	// ascending row id. Fewer than domain.MinimumEmbeddings entries
	// yields a *domain.IndexUnavailableError.
	Build(entries []domain.VectorEntry) (VectorIndex, error)
}
