package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/vectra-cli/internal/core/domain"
	"github.com/custodia-labs/vectra-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vectra-cli/internal/core/ports/driving"
	"github.com/custodia-labs/vectra-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// DefaultTopK is the result count when the caller passes none.
const DefaultTopK = 5

// snapshot pairs a built index with the entries it was built from. The
// i-th index position maps to entries[i]; the pair is immutable once
// installed and replaced wholesale on rebuild.
type snapshot struct {
	index   driven.VectorIndex
	entries []domain.VectorEntry
	info    domain.IndexInfo
}

// SearchService answers semantic and exact queries. The index snapshot
// is built lazily on first semantic query and only replaced by an
// explicit rebuild; it never reacts to store writes on its own.
type SearchService struct {
	store    driven.MetadataStore
	provider driven.EmbeddingProvider
	builder  driven.IndexBuilder

	mu         sync.Mutex
	current    *snapshot
	generation uint64
}

// NewSearchService creates a search service. provider may be nil, which
// disables semantic search while leaving exact search available.
func NewSearchService(
	store driven.MetadataStore,
	provider driven.EmbeddingProvider,
	builder driven.IndexBuilder,
) *SearchService {
	return &SearchService{
		store:    store,
		provider: provider,
		builder:  builder,
	}
}

// SemanticSearch embeds the query and runs nearest-neighbour search
// against the current snapshot.
func (s *SearchService) SemanticSearch(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	logger.Section("Semantic Search")

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}
	if s.provider == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	snap, err := s.ensureSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("Searching %s index of %d vectors (generation %d)",
		snap.info.Type, snap.info.Size, snap.info.Generation)

	queryVector, err := s.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := snap.index.Search(queryVector, topK)
	if err != nil {
		return nil, err
	}

	// Documents repeat across chunks; hydrate each once.
	docNames := make(map[string]string)

	results := make([]domain.SearchResult, 0, len(hits))
	for i, hit := range hits {
		rowID := snap.entries[hit.Position].RowID

		rec, err := s.store.GetEmbedding(ctx, rowID)
		if err != nil {
			return nil, fmt.Errorf("hydrating result %d: %w", i, err)
		}

		name, ok := docNames[rec.DocumentID]
		if !ok {
			doc, err := s.store.GetDocument(ctx, rec.DocumentID)
			if err != nil {
				return nil, fmt.Errorf("hydrating document %s: %w", rec.DocumentID, err)
			}
			name = doc.OriginalName
			docNames[rec.DocumentID] = name
		}

		results = append(results, domain.SearchResult{
			Rank:            i + 1,
			DocumentID:      rec.DocumentID,
			DocumentName:    name,
			TextChunk:       rec.TextChunk,
			SimilarityScore: 1.0 / (1.0 + hit.Distance),
			Distance:        hit.Distance,
			MatchType:       "semantic",
		})
	}

	return results, nil
}

// ExactSearch returns chunks containing the query substring in
// insertion order, each scoring 1.0.
func (s *SearchService) ExactSearch(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	logger.Section("Exact Search")

	if strings.TrimSpace(query) == "" {
		return []domain.SearchResult{}, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	records, err := s.store.QueryExact(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	logger.Debug("Found %d exact matches", len(records))

	docNames := make(map[string]string)

	results := make([]domain.SearchResult, 0, len(records))
	for i, rec := range records {
		name, ok := docNames[rec.DocumentID]
		if !ok {
			doc, err := s.store.GetDocument(ctx, rec.DocumentID)
			if err != nil {
				return nil, fmt.Errorf("hydrating document %s: %w", rec.DocumentID, err)
			}
			name = doc.OriginalName
			docNames[rec.DocumentID] = name
		}

		results = append(results, domain.SearchResult{
			Rank:            i + 1,
			DocumentID:      rec.DocumentID,
			DocumentName:    name,
			TextChunk:       rec.TextChunk,
			SimilarityScore: 1.0,
			ChunkIndex:      rec.ChunkIndex,
			MatchType:       "exact",
		})
	}

	return results, nil
}

// Availability reports whether semantic search can be offered.
func (s *SearchService) Availability(ctx context.Context) (*domain.Availability, error) {
	count, err := s.store.CountEmbeddings(ctx)
	if err != nil {
		return nil, err
	}

	a := &domain.Availability{
		EmbeddingCount:  count,
		MinimumRequired: domain.MinimumEmbeddings,
		Available:       count >= domain.MinimumEmbeddings && s.provider != nil,
	}
	switch {
	case s.provider == nil:
		a.Message = "semantic search requires an embedding provider"
	case !a.Available:
		a.Message = fmt.Sprintf("semantic search requires at least %d embeddings, found %d",
			domain.MinimumEmbeddings, count)
	default:
		a.Message = "semantic search available"
	}
	return a, nil
}

// RebuildIndex rebuilds the snapshot from the store and advances the
// generation counter.
func (s *SearchService) RebuildIndex(ctx context.Context) (*domain.IndexInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.buildLocked(ctx)
	if err != nil {
		return nil, err
	}

	info := snap.info
	return &info, nil
}

// IndexInfo returns metadata for the currently held snapshot, or nil
// when no index has been built.
func (s *SearchService) IndexInfo() *domain.IndexInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	info := s.current.info
	return &info
}

// ensureSnapshot returns the held snapshot, building one if none exists.
func (s *SearchService) ensureSnapshot(ctx context.Context) (*snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return s.current, nil
	}
	return s.buildLocked(ctx)
}

// buildLocked loads all embeddings and installs a fresh snapshot.
// Caller must hold mu.
func (s *SearchService) buildLocked(ctx context.Context) (*snapshot, error) {
	entries, err := s.store.LoadAllEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading embeddings: %w", err)
	}

	index, err := s.builder.Build(entries)
	if err != nil {
		return nil, err
	}

	s.generation++
	snap := &snapshot{
		index:   index,
		entries: entries,
		info: domain.IndexInfo{
			Type:       index.Type(),
			Size:       index.Size(),
			Dimensions: index.Dimensions(),
			Generation: s.generation,
			BuiltAt:    time.Now().UTC(),
		},
	}
	s.current = snap

	logger.Info("Built %s index: %d vectors, %d dimensions, generation %d",
		snap.info.Type, snap.info.Size, snap.info.Dimensions, snap.info.Generation)

	if err := s.store.RecordIndexBuild(ctx, snap.info.Type); err != nil {
		logger.Warn("Could not record index build: %v", err)
	}

	return snap, nil
}
