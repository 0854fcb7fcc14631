package index

import (
	"sort"

	"github.com/custodia-labs/vectra-cli/internal/core/domain"
	"github.com/custodia-labs/vectra-cli/internal/core/ports/driven"
)

// Ensure Flat implements the interface.
var _ driven.VectorIndex = (*Flat)(nil)

// Flat is an exact brute-force index. Every query scans every vector,
// which is fine for the small corpora it is selected for.
type Flat struct {
	vectors [][]float32
	dims    int
}

// NewFlat builds a flat index over vectors. All vectors must share the
// same dimension; the builder validates this before calling.
func NewFlat(vectors [][]float32) *Flat {
	dims := 0
	if len(vectors) > 0 {
		dims = len(vectors[0])
	}
	return &Flat{vectors: vectors, dims: dims}
}

// Type identifies the index structure.
func (f *Flat) Type() string { return "flat" }

// Size returns the number of indexed vectors.
func (f *Flat) Size() int { return len(f.vectors) }

// Dimensions returns the vector dimension of the snapshot.
func (f *Flat) Dimensions() int { return f.dims }

// Search scans the full corpus and returns the k nearest vectors by
// ascending distance.
func (f *Flat) Search(query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != f.dims {
		return nil, &domain.DimensionMismatchError{Want: f.dims, Got: len(query), Query: true}
	}
	if k <= 0 {
		return nil, nil
	}

	hits := make([]driven.VectorHit, 0, len(f.vectors))
	for i, v := range f.vectors {
		hits = append(hits, driven.VectorHit{Position: i, Distance: squaredL2(query, v)})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Position < hits[j].Position
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}
