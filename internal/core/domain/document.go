package domain

import "time"

// ProcessingStatus tracks a document's ingestion lifecycle.
// processing is the only non-terminal state; re-ingestion from failed
// re-enters processing.
type ProcessingStatus string

const (
	// StatusPending means the document is known but ingestion has not started.
	StatusPending ProcessingStatus = "pending"

	// StatusProcessing means embedding generation is in flight.
	StatusProcessing ProcessingStatus = "processing"

	// StatusCompleted means all chunks were embedded and persisted.
	StatusCompleted ProcessingStatus = "completed"

	// StatusFailed means ingestion aborted mid-stream. Batches committed
	// before the failure remain committed and queryable.
	StatusFailed ProcessingStatus = "failed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s ProcessingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal state.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Document represents one ingested source file.
// The metadata store is the sole source of truth for documents; deletion
// is caller-driven and cascades to the document's embeddings.
type Document struct {
	// ID is the caller-chosen identifier, typically a content hash.
	ID string

	// Filename is the stored file name.
	Filename string

	// OriginalName is the name the file was uploaded under.
	OriginalName string

	// SourcePath is the original location on disk, when known.
	SourcePath string

	// SizeBytes is the raw input size.
	SizeBytes int64

	// MIMEType is the declared MIME type of the raw input.
	MIMEType string

	// UploadedAt is when ingestion began.
	UploadedAt time.Time

	// FullText is the cached extracted text.
	FullText string

	// EmbeddingCount equals the number of embedding rows whenever
	// Status is StatusCompleted.
	EmbeddingCount int

	// Status is the ingestion lifecycle state.
	Status ProcessingStatus
}

// EmbeddingRecord is one persisted chunk of a document together with its
// vector. Records are owned by exactly one document; ChunkIndex is unique
// within a document and ID is assigned by the store in insertion order.
type EmbeddingRecord struct {
	// ID is the store-assigned, monotonically increasing row id.
	ID int64

	// DocumentID links to the owning Document.
	DocumentID string

	// ChunkIndex is the ordinal position within the document.
	ChunkIndex int

	// TextChunk is the chunk text that was embedded.
	TextChunk string

	// Vector is the fixed-length embedding. The dimension is constant
	// across the whole store.
	Vector []float32

	// Hash is a content hash of the vector bytes, kept for dedup and
	// debugging.
	Hash string

	// CreatedAt is when the row was inserted.
	CreatedAt time.Time
}

// VectorEntry is the minimal (row id, vector) pair the index builder
// consumes. Entries are always ordered by ascending row id; index
// position i corresponds to the i-th entry, and that correspondence is
// what maps search hits back to source chunks.
type VectorEntry struct {
	RowID  int64
	Vector []float32
}

// IngestResult summarises one embedding-generation run.
type IngestResult struct {
	DocumentID         string           `json:"document_id"`
	ChunkCount         int              `json:"chunk_count"`
	EmbeddingCount     int              `json:"embedding_count"`
	EmbeddingDimension int              `json:"embedding_dimension"`
	Status             ProcessingStatus `json:"status"`
}
