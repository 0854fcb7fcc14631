package index

import (
	"github.com/custodia-labs/vectra-cli/internal/core/domain"
	"github.com/custodia-labs/vectra-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vectra-cli/internal/logger"
)

// Ensure Builder implements the interface.
var _ driven.IndexBuilder = (*Builder)(nil)

// ivfThreshold is the corpus size at which clustering starts paying off
// over a brute-force scan.
const ivfThreshold = 50

// Builder constructs a vector index sized to the corpus: flat below
// ivfThreshold entries, IVF at or above it.
type Builder struct{}

// NewBuilder creates an index builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build returns an index over entries. Fewer than
// domain.MinimumEmbeddings entries yields a *domain.IndexUnavailableError.
func (b *Builder) Build(entries []domain.VectorEntry) (driven.VectorIndex, error) {
	if len(entries) < domain.MinimumEmbeddings {
		return nil, &domain.IndexUnavailableError{
			EmbeddingCount:  len(entries),
			MinimumRequired: domain.MinimumEmbeddings,
		}
	}

	dims := len(entries[0].Vector)
	vectors := make([][]float32, len(entries))
	for i, e := range entries {
		if len(e.Vector) != dims {
			return nil, &domain.DimensionMismatchError{Want: dims, Got: len(e.Vector)}
		}
		vectors[i] = e.Vector
	}

	if len(vectors) < ivfThreshold {
		logger.Debug("building flat index over %d vectors", len(vectors))
		return NewFlat(vectors), nil
	}

	nlist := clusterCount(len(vectors))
	logger.Debug("building ivf index over %d vectors with %d clusters", len(vectors), nlist)
	return NewIVF(vectors, nlist), nil
}

// clusterCount sizes the IVF partitioning: roughly one cluster per 100
// vectors, capped at 100 and never more than half the corpus.
func clusterCount(n int) int {
	nlist := n / 100
	if nlist < 1 {
		nlist = 1
	}
	if nlist > 100 {
		nlist = 100
	}
	if half := n / 2; nlist > half {
		nlist = half
	}
	if nlist < 1 {
		nlist = 1
	}
	return nlist
}
