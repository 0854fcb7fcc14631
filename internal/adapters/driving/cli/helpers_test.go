package cli

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/vectra-cli/internal/core/domain"
	"github.com/custodia-labs/vectra-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vectra-cli/internal/core/ports/driving"
)

// setupTestServices injects fake services into the package-level wiring
// and returns a cleanup that resets it. With a store injected,
// initServices leaves the wiring alone.
func setupTestServices() func() {
	metadataStore = &fakeMetadataStore{
		docs: []domain.Document{
			{
				ID:             "doc-1",
				Filename:       "report.txt",
				OriginalName:   "report.txt",
				SizeBytes:      2500,
				MIMEType:       "text/plain",
				UploadedAt:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
				EmbeddingCount: 3,
				Status:         domain.StatusCompleted,
			},
			{
				ID:           "doc-2",
				Filename:     "notes.md",
				OriginalName: "notes.md",
				MIMEType:     "text/markdown",
				Status:       domain.StatusFailed,
			},
		},
	}
	ingestService = &fakeIngestService{}
	searchService = &fakeSearchService{
		results: []domain.SearchResult{
			{
				Rank:            1,
				DocumentID:      "doc-1",
				DocumentName:    "report.txt",
				TextChunk:       "Quarterly numbers held steady across all regions.",
				SimilarityScore: 0.91,
				Distance:        0.099,
				MatchType:       "semantic",
			},
		},
		availability: &domain.Availability{
			Available:       true,
			EmbeddingCount:  12,
			MinimumRequired: domain.MinimumEmbeddings,
			Message:         "semantic search available",
		},
	}

	return func() {
		metadataStore = nil
		ingestService = nil
		searchService = nil
	}
}

type fakeMetadataStore struct {
	docs []domain.Document
	err  error
}

// Ensure the fake implements the interface.
var _ driven.MetadataStore = (*fakeMetadataStore)(nil)

func (f *fakeMetadataStore) UpsertDocument(_ context.Context, _ *domain.Document) error {
	return f.err
}

func (f *fakeMetadataStore) InsertEmbeddings(_ context.Context, _ string, _ int, _ []string, _ [][]float32) error {
	return f.err
}

func (f *fakeMetadataStore) UpdateDocumentStatus(_ context.Context, _ string, _ domain.ProcessingStatus, _ int) error {
	return f.err
}

func (f *fakeMetadataStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.docs {
		if f.docs[i].ID == id {
			return &f.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMetadataStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func (f *fakeMetadataStore) DeleteDocument(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	for i := range f.docs {
		if f.docs[i].ID == id {
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeMetadataStore) DeleteEmbeddings(_ context.Context, _ string) error {
	return f.err
}

func (f *fakeMetadataStore) GetEmbedding(_ context.Context, _ int64) (*domain.EmbeddingRecord, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeMetadataStore) LoadAllEmbeddings(_ context.Context) ([]domain.VectorEntry, error) {
	return nil, f.err
}

func (f *fakeMetadataStore) CountEmbeddings(_ context.Context) (int, error) {
	return 12, f.err
}

func (f *fakeMetadataStore) Dimension(_ context.Context) (int, error) {
	return 4, f.err
}

func (f *fakeMetadataStore) QueryExact(_ context.Context, _ string, _ int) ([]domain.EmbeddingRecord, error) {
	return nil, f.err
}

func (f *fakeMetadataStore) RecordIndexBuild(_ context.Context, _ string) error {
	return f.err
}

func (f *fakeMetadataStore) Close() error { return nil }

type fakeIngestService struct {
	ingestErr error
	deleted   []string
}

var _ driving.IngestService = (*fakeIngestService)(nil)

func (f *fakeIngestService) Ingest(_ context.Context, req driving.IngestRequest) (*domain.IngestResult, error) {
	if f.ingestErr != nil {
		return nil, f.ingestErr
	}
	return &domain.IngestResult{
		DocumentID:         req.DocumentID,
		ChunkCount:         3,
		EmbeddingCount:     3,
		EmbeddingDimension: 4,
		Status:             domain.StatusCompleted,
	}, nil
}

func (f *fakeIngestService) IngestText(_ context.Context, _, documentID string) (*domain.IngestResult, error) {
	if f.ingestErr != nil {
		return nil, f.ingestErr
	}
	return &domain.IngestResult{
		DocumentID:         documentID,
		ChunkCount:         1,
		EmbeddingCount:     1,
		EmbeddingDimension: 4,
		Status:             domain.StatusCompleted,
	}, nil
}

func (f *fakeIngestService) Delete(_ context.Context, documentID string) error {
	if documentID == "missing" {
		return domain.ErrNotFound
	}
	f.deleted = append(f.deleted, documentID)
	return nil
}

type fakeSearchService struct {
	results      []domain.SearchResult
	searchErr    error
	availability *domain.Availability
	info         *domain.IndexInfo
	rebuildErr   error
}

var _ driving.SearchService = (*fakeSearchService)(nil)

func (f *fakeSearchService) SemanticSearch(_ context.Context, _ string, _ int) ([]domain.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeSearchService) ExactSearch(_ context.Context, _ string, _ int) ([]domain.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	out := make([]domain.SearchResult, 0, len(f.results))
	for i := range f.results {
		r := f.results[i]
		r.SimilarityScore = 1.0
		r.Distance = 0
		r.MatchType = "exact"
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeSearchService) Availability(_ context.Context) (*domain.Availability, error) {
	if f.availability == nil {
		return nil, errors.New("availability unset")
	}
	return f.availability, nil
}

func (f *fakeSearchService) RebuildIndex(_ context.Context) (*domain.IndexInfo, error) {
	if f.rebuildErr != nil {
		return nil, f.rebuildErr
	}
	f.info = &domain.IndexInfo{
		Type:       "flat",
		Size:       12,
		Dimensions: 4,
		Generation: 1,
		BuiltAt:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	return f.info, nil
}

func (f *fakeSearchService) IndexInfo() *domain.IndexInfo {
	return f.info
}
