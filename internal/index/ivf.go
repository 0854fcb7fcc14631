package index

import (
	"sort"

	"github.com/custodia-labs/vectra-cli/internal/core/domain"
	"github.com/custodia-labs/vectra-cli/internal/core/ports/driven"
)

// Ensure IVF implements the interface.
var _ driven.VectorIndex = (*IVF)(nil)

const (
	// DefaultNProbe is the number of clusters scanned per query.
	DefaultNProbe = 4

	// maxKMeansIterations caps Lloyd's algorithm. Training converges well
	// before this on realistic corpora.
	maxKMeansIterations = 25
)

// IVF is an inverted-file index. Vectors are partitioned into nlist
// clusters by k-means at build time; a query scans only the nprobe
// clusters whose centroids are nearest. Recall is approximate by
// construction.
type IVF struct {
	vectors   [][]float32
	centroids [][]float32
	lists     [][]int // cluster -> member positions
	dims      int
	nprobe    int
}

// NewIVF trains an IVF index with nlist clusters over vectors. Training
// is deterministic: centroids are seeded from evenly spaced data points,
// so the same input always yields the same index.
func NewIVF(vectors [][]float32, nlist int) *IVF {
	dims := len(vectors[0])

	centroids := seedCentroids(vectors, nlist)
	assignments := make([]int, len(vectors))

	for iter := 0; iter < maxKMeansIterations; iter++ {
		moved := assign(vectors, centroids, assignments)
		recompute(vectors, centroids, assignments)
		if !moved {
			break
		}
	}

	lists := make([][]int, nlist)
	for pos, c := range assignments {
		lists[c] = append(lists[c], pos)
	}

	return &IVF{
		vectors:   vectors,
		centroids: centroids,
		lists:     lists,
		dims:      dims,
		nprobe:    DefaultNProbe,
	}
}

// seedCentroids copies nlist evenly spaced data points as the initial
// centroids.
func seedCentroids(vectors [][]float32, nlist int) [][]float32 {
	centroids := make([][]float32, nlist)
	stride := len(vectors) / nlist
	for i := 0; i < nlist; i++ {
		src := vectors[i*stride]
		c := make([]float32, len(src))
		copy(c, src)
		centroids[i] = c
	}
	return centroids
}

// assign writes each vector's nearest centroid into assignments and
// reports whether any assignment changed.
func assign(vectors [][]float32, centroids [][]float32, assignments []int) bool {
	moved := false
	for i, v := range vectors {
		best := 0
		bestDist := squaredL2(v, centroids[0])
		for c := 1; c < len(centroids); c++ {
			if d := squaredL2(v, centroids[c]); d < bestDist {
				best, bestDist = c, d
			}
		}
		if assignments[i] != best {
			assignments[i] = best
			moved = true
		}
	}
	return moved
}

// recompute moves each centroid to the mean of its members. Empty
// clusters keep their previous centroid.
func recompute(vectors [][]float32, centroids [][]float32, assignments []int) {
	dims := len(vectors[0])
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for c := range sums {
		sums[c] = make([]float64, dims)
	}

	for i, v := range vectors {
		c := assignments[i]
		counts[c]++
		for d := 0; d < dims; d++ {
			sums[c][d] += float64(v[d])
		}
	}

	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		for d := 0; d < dims; d++ {
			centroids[c][d] = float32(sums[c][d] / float64(counts[c]))
		}
	}
}

// Type identifies the index structure.
func (ix *IVF) Type() string { return "ivf" }

// Size returns the number of indexed vectors.
func (ix *IVF) Size() int { return len(ix.vectors) }

// Dimensions returns the vector dimension of the snapshot.
func (ix *IVF) Dimensions() int { return ix.dims }

// NList returns the number of clusters.
func (ix *IVF) NList() int { return len(ix.centroids) }

// Search probes the nprobe nearest clusters and returns the k nearest
// members by ascending distance.
func (ix *IVF) Search(query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != ix.dims {
		return nil, &domain.DimensionMismatchError{Want: ix.dims, Got: len(query), Query: true}
	}
	if k <= 0 {
		return nil, nil
	}

	nprobe := ix.nprobe
	if nprobe > len(ix.centroids) {
		nprobe = len(ix.centroids)
	}

	clusterDists := make([]driven.VectorHit, len(ix.centroids))
	for c, centroid := range ix.centroids {
		clusterDists[c] = driven.VectorHit{Position: c, Distance: squaredL2(query, centroid)}
	}
	sort.Slice(clusterDists, func(i, j int) bool {
		return clusterDists[i].Distance < clusterDists[j].Distance
	})

	var hits []driven.VectorHit
	for _, cd := range clusterDists[:nprobe] {
		for _, pos := range ix.lists[cd.Position] {
			hits = append(hits, driven.VectorHit{Position: pos, Distance: squaredL2(query, ix.vectors[pos])})
		}
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
