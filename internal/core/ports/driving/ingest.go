package driving

import (
	"context"

	"github.com/custodia-labs/vectra-cli/internal/core/domain"
)

// IngestRequest carries one document into the engine.
type IngestRequest struct {
	// DocumentID is the caller-chosen id, typically a content hash.
	DocumentID string

	// Data is the raw document bytes.
	Data []byte

	// MIMEType is the declared MIME type of Data.
	MIMEType string

	// Filename is the stored file name.
	Filename string

	// OriginalName is the name the file was uploaded under. Defaults to
	// Filename when empty.
	OriginalName string

	// SourcePath is the original location on disk, when known.
	SourcePath string
}

// IngestService drives the extract -> chunk -> embed -> persist pipeline.
// Writes for a single document id must be serialized by the caller;
// different documents may be ingested concurrently.
type IngestService interface {
	// Ingest extracts text from raw bytes, chunks it, embeds the chunks
	// in batches and persists everything. On mid-stream failure the
	// document is marked failed; batches already committed stay
	// committed and visible.
	Ingest(ctx context.Context, req IngestRequest) (*domain.IngestResult, error)

	// IngestText runs the same pipeline over already-extracted text.
	IngestText(ctx context.Context, text, documentID string) (*domain.IngestResult, error)

	// Delete removes a document and its embeddings.
	Delete(ctx context.Context, documentID string) error
}
