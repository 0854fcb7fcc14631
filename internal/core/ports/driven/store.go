package driven

import (
	"context"

	"github.com/custodia-labs/vectra-cli/internal/core/domain"
)

// MetadataStore is the durable relational store for documents and their
// per-chunk embeddings. It is the sole source of truth; the vector index
// is derived from it and never authoritative.
type MetadataStore interface {
	// UpsertDocument stores or updates a document, idempotent by ID.
	UpsertDocument(ctx context.Context, doc *domain.Document) error

	// InsertEmbeddings persists one batch of (chunk, vector) pairs for a
	// document inside a single transaction: all rows commit together or
	// none do, so a crash mid-write never leaves a partial batch visible.
	// firstChunkIndex is the ordinal of chunks[0] within the document.
	InsertEmbeddings(ctx context.Context, documentID string, firstChunkIndex int, chunks []string, vectors [][]float32) error

	// UpdateDocumentStatus transitions a document's lifecycle state and
	// records its embedding count.
	UpdateDocumentStatus(ctx context.Context, id string, status domain.ProcessingStatus, embeddingCount int) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents, most recently uploaded first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document and cascades to its embeddings.
	DeleteDocument(ctx context.Context, id string) error

	// DeleteEmbeddings removes every embedding row for a document,
	// leaving the document row alone. A document with no rows is a
	// no-op, not an error. Re-ingestion clears prior rows with this
	// before writing the first batch.
	DeleteEmbeddings(ctx context.Context, documentID string) error

	// GetEmbedding retrieves one embedding row by its store-assigned id.
	GetEmbedding(ctx context.Context, rowID int64) (*domain.EmbeddingRecord, error)

	// LoadAllEmbeddings returns every (row id, vector) pair ordered by
	// ascending row id. This ordering is load-bearing: index position i
	// maps to the i-th entry, which is how search hits find their chunks.
	LoadAllEmbeddings(ctx context.Context) ([]domain.VectorEntry, error)

	// CountEmbeddings returns the total number of embedding rows.
	CountEmbeddings(ctx context.Context) (int, error)

	// Dimension returns the store's fixed vector dimension, or 0 when the
	// store holds no embeddings yet.
	Dimension(ctx context.Context) (int, error)

	// QueryExact returns embedding rows whose chunk text contains the
	// substring (case-sensitive), ordered by ascending insertion id and
	// capped at limit.
	QueryExact(ctx context.Context, substring string, limit int) ([]domain.EmbeddingRecord, error)

	// RecordIndexBuild appends observability metadata about an index
	// build. The index structure itself is rebuilt in memory each run.
	RecordIndexBuild(ctx context.Context, indexType string) error

	// Close releases the underlying connection.
	Close() error
}
