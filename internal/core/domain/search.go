package domain

import "time"

// MinimumEmbeddings is the smallest corpus size for which a vector index
// can be built. Below this, semantic search is explicitly unavailable.
const MinimumEmbeddings = 10

// SearchResult represents a single search hit in either mode.
type SearchResult struct {
	// Rank is the 1-based position in the result list.
	Rank int `json:"rank"`

	// DocumentID identifies the owning document.
	DocumentID string `json:"document_id"`

	// DocumentName is the document's original name.
	DocumentName string `json:"document_name"`

	// TextChunk is the matched chunk text.
	TextChunk string `json:"text_chunk"`

	// SimilarityScore is 1/(1+distance) for semantic hits and exactly
	// 1.0 for exact matches.
	SimilarityScore float64 `json:"similarity_score"`

	// Distance is the raw index distance. Semantic mode only.
	Distance float64 `json:"distance,omitempty"`

	// ChunkIndex is the ordinal of the chunk within its document.
	// Exact mode only.
	ChunkIndex int `json:"chunk_index,omitempty"`

	// MatchType is "semantic" or "exact".
	MatchType string `json:"match_type"`
}

// Availability describes whether semantic search can be offered.
type Availability struct {
	Available       bool   `json:"available"`
	EmbeddingCount  int    `json:"embedding_count"`
	MinimumRequired int    `json:"minimum_required"`
	Message         string `json:"message"`
}

// IndexInfo describes a built vector index snapshot.
// The index is a derived, rebuildable artifact and never authoritative.
type IndexInfo struct {
	// Type is the index structure: "flat" for exact brute-force,
	// "ivf" for the clustered index.
	Type string `json:"index_type"`

	// Size is the number of vectors in the snapshot.
	Size int `json:"index_size"`

	// Dimensions is the vector dimension of the snapshot.
	Dimensions int `json:"dimensions"`

	// Generation increments on every successful rebuild. Queries capture
	// the generation they ran against.
	Generation uint64 `json:"generation"`

	// BuiltAt is when the snapshot was constructed.
	BuiltAt time.Time `json:"built_at"`
}
