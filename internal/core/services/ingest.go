package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/vectra-cli/internal/core/domain"
	"github.com/custodia-labs/vectra-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vectra-cli/internal/core/ports/driving"
	"github.com/custodia-labs/vectra-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultBatchSize is the number of chunks embedded per provider call.
const DefaultBatchSize = 32

// Chunker splits extracted text into overlapping chunks.
type Chunker interface {
	Chunk(text string) []string
}

// ProgressFunc is called after each committed batch with the number of
// chunks embedded so far and the total.
type ProgressFunc func(completed, total int)

// IngestService drives the extract -> chunk -> embed -> persist
// pipeline. Batches commit independently: a failure partway through
// keeps earlier batches visible and marks the document failed.
type IngestService struct {
	store     driven.MetadataStore
	provider  driven.EmbeddingProvider
	registry  driven.ExtractorRegistry
	chunker   Chunker
	monitor   driven.MemoryMonitor
	batchSize int
	progress  ProgressFunc
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithBatchSize overrides the embedding batch size. Non-positive values
// keep the default.
func WithBatchSize(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithProgress registers a per-batch progress callback.
func WithProgress(fn ProgressFunc) IngestOption {
	return func(s *IngestService) {
		s.progress = fn
	}
}

// NewIngestService creates an ingest service. provider may be nil, in
// which case every ingestion fails with domain.ErrEmbeddingUnavailable.
func NewIngestService(
	store driven.MetadataStore,
	provider driven.EmbeddingProvider,
	registry driven.ExtractorRegistry,
	chunker Chunker,
	monitor driven.MemoryMonitor,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		store:     store,
		provider:  provider,
		registry:  registry,
		chunker:   chunker,
		monitor:   monitor,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest extracts text from raw bytes and runs the full pipeline.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.IngestResult, error) {
	if req.DocumentID == "" {
		return nil, fmt.Errorf("%w: document id is empty", domain.ErrInvalidInput)
	}
	if s.provider == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Section("Document Ingestion")
	logger.Debug("Document: %s (%s, %d bytes)", req.DocumentID, req.MIMEType, len(req.Data))

	text := s.registry.Extract(ctx, req.Data, req.MIMEType)

	originalName := req.OriginalName
	if originalName == "" {
		originalName = req.Filename
	}

	doc := &domain.Document{
		ID:           req.DocumentID,
		Filename:     req.Filename,
		OriginalName: originalName,
		SourcePath:   req.SourcePath,
		SizeBytes:    int64(len(req.Data)),
		MIMEType:     req.MIMEType,
		FullText:     text,
		Status:       domain.StatusProcessing,
	}

	return s.run(ctx, doc, text)
}

// IngestText runs the pipeline over already-extracted text.
func (s *IngestService) IngestText(ctx context.Context, text, documentID string) (*domain.IngestResult, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is empty", domain.ErrInvalidInput)
	}
	if s.provider == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	logger.Section("Text Ingestion")
	logger.Debug("Document: %s (%d chars)", documentID, len(text))

	doc := &domain.Document{
		ID:           documentID,
		Filename:     documentID + ".txt",
		OriginalName: documentID + ".txt",
		SizeBytes:    int64(len(text)),
		MIMEType:     "text/plain",
		FullText:     text,
		Status:       domain.StatusProcessing,
	}

	return s.run(ctx, doc, text)
}

// Delete removes a document and its embeddings.
func (s *IngestService) Delete(ctx context.Context, documentID string) error {
	return s.store.DeleteDocument(ctx, documentID)
}

// run chunks, embeds and persists. The document is already populated
// and is upserted in processing state before any embedding work starts.
func (s *IngestService) run(ctx context.Context, doc *domain.Document, text string) (*domain.IngestResult, error) {
	if err := s.store.UpsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("registering document: %w", err)
	}

	// Re-ingestion starts from a clean slate: rows from an earlier run
	// (completed or aborted) would collide with the new chunk indexes.
	if err := s.store.DeleteEmbeddings(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("clearing previous embeddings: %w", err)
	}

	chunks := s.chunker.Chunk(text)
	logger.Debug("Split into %d chunks", len(chunks))

	result := &domain.IngestResult{
		DocumentID:         doc.ID,
		ChunkCount:         len(chunks),
		EmbeddingDimension: s.provider.Dimensions(),
	}

	// Empty or whitespace-only text completes with zero embeddings.
	if len(chunks) == 0 {
		if err := s.store.UpdateDocumentStatus(ctx, doc.ID, domain.StatusCompleted, 0); err != nil {
			return nil, fmt.Errorf("completing document: %w", err)
		}
		result.Status = domain.StatusCompleted
		return result, nil
	}

	committed := 0
	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		vectors, err := s.provider.EmbedBatch(ctx, batch)
		if err != nil {
			return s.fail(ctx, result, committed, fmt.Errorf("embedding batch at chunk %d: %w", start, err))
		}
		if len(vectors) != len(batch) {
			return s.fail(ctx, result, committed,
				fmt.Errorf("provider returned %d vectors for %d chunks", len(vectors), len(batch)))
		}
		for _, v := range vectors {
			if len(v) != s.provider.Dimensions() {
				return s.fail(ctx, result, committed,
					&domain.DimensionMismatchError{Want: s.provider.Dimensions(), Got: len(v)})
			}
		}

		if err := s.store.InsertEmbeddings(ctx, doc.ID, start, batch, vectors); err != nil {
			return s.fail(ctx, result, committed, fmt.Errorf("persisting batch at chunk %d: %w", start, err))
		}
		committed += len(batch)
		logger.Debug("Committed batch: %d/%d chunks", committed, len(chunks))

		s.monitor.Check()
		if s.progress != nil {
			s.progress(committed, len(chunks))
		}
	}

	if err := s.store.UpdateDocumentStatus(ctx, doc.ID, domain.StatusCompleted, committed); err != nil {
		return nil, fmt.Errorf("completing document: %w", err)
	}

	result.EmbeddingCount = committed
	result.Status = domain.StatusCompleted
	return result, nil
}

// fail marks the document failed, keeping already-committed batches,
// and returns the pipeline error.
func (s *IngestService) fail(ctx context.Context, result *domain.IngestResult, committed int, cause error) (*domain.IngestResult, error) {
	logger.Warn("Ingestion failed after %d committed embeddings: %v", committed, cause)

	if err := s.store.UpdateDocumentStatus(ctx, result.DocumentID, domain.StatusFailed, committed); err != nil {
		logger.Warn("Could not mark document failed: %v", err)
	}

	result.EmbeddingCount = committed
	result.Status = domain.StatusFailed
	return result, cause
}
