package driving

import (
	"context"

	"github.com/custodia-labs/vectra-cli/internal/core/domain"
)

// SearchService answers semantic and exact queries over the store.
type SearchService interface {
	// SemanticSearch embeds the query and runs nearest-neighbour search
	// against the current index snapshot, building one first if none is
	// held. A corpus below the minimum propagates
	// *domain.IndexUnavailableError rather than silently degrading.
	SemanticSearch(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)

	// ExactSearch returns chunks containing the query substring,
	// case-sensitive, in insertion order. Every match scores 1.0.
	ExactSearch(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)

	// Availability lets a caller decide whether to offer semantic search
	// before attempting it.
	Availability(ctx context.Context) (*domain.Availability, error)

	// RebuildIndex explicitly rebuilds the index snapshot from the store
	// and advances the generation counter.
	RebuildIndex(ctx context.Context) (*domain.IndexInfo, error)

	// IndexInfo returns metadata for the currently held snapshot, or nil
	// when no index has been built.
	IndexInfo() *domain.IndexInfo
}
