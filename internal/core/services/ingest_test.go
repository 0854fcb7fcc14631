package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vectra-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/vectra-cli/internal/core/domain"
	"github.com/custodia-labs/vectra-cli/internal/core/ports/driving"
	"github.com/custodia-labs/vectra-cli/internal/postprocessors/chunker"
)

func newIngestService(t *testing.T, provider *fakeProvider, opts ...IngestOption) (*IngestService, *sqlite.Store) {
	t.Helper()
	store := newTestStore(t)
	svc := NewIngestService(store, provider, passthroughRegistry{}, chunker.New(), nopMonitor{}, opts...)
	return svc, store
}

func TestIngestText_ChunksAndPersists(t *testing.T) {
	provider := newFakeProvider(4)
	svc, store := newIngestService(t, provider)
	ctx := context.Background()

	// 2500 characters of sentence-terminated text chunks into 3 rows
	// with the default 1000/200 chunking parameters.
	text := strings.Repeat("Quarterly numbers held steady across all regions. ", 50)
	require.Len(t, text, 2500)

	result, err := svc.IngestText(ctx, text, "report-q3")
	require.NoError(t, err)

	assert.Equal(t, "report-q3", result.DocumentID)
	assert.Equal(t, 3, result.ChunkCount)
	assert.Equal(t, 3, result.EmbeddingCount)
	assert.Equal(t, 4, result.EmbeddingDimension)
	assert.Equal(t, domain.StatusCompleted, result.Status)

	count, err := store.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	doc, err := store.GetDocument(ctx, "report-q3")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, doc.Status)
	assert.Equal(t, 3, doc.EmbeddingCount)
	assert.Equal(t, text, doc.FullText)
}

func TestIngestText_EmptyTextCompletesWithZero(t *testing.T) {
	svc, store := newIngestService(t, newFakeProvider(4))
	ctx := context.Background()

	result, err := svc.IngestText(ctx, "   \n\t  ", "empty-doc")
	require.NoError(t, err)

	assert.Equal(t, 0, result.ChunkCount)
	assert.Equal(t, 0, result.EmbeddingCount)
	assert.Equal(t, domain.StatusCompleted, result.Status)

	doc, err := store.GetDocument(ctx, "empty-doc")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, doc.Status)
}

func TestIngestText_RequiresDocumentID(t *testing.T) {
	svc, _ := newIngestService(t, newFakeProvider(4))

	_, err := svc.IngestText(context.Background(), "some text", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngest_NilProviderUnavailable(t *testing.T) {
	store := newTestStore(t)
	svc := NewIngestService(store, nil, passthroughRegistry{}, chunker.New(), nopMonitor{})

	_, err := svc.Ingest(context.Background(), driving.IngestRequest{
		DocumentID: "doc-1",
		Data:       []byte("text"),
		MIMEType:   "text/plain",
	})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIngest_MidStreamFailureKeepsCommittedBatches(t *testing.T) {
	provider := newFakeProvider(4)
	provider.failOnCall = 2 // first batch succeeds, second fails

	store := newTestStore(t)
	svc := NewIngestService(store, provider, passthroughRegistry{}, lineChunker{}, nopMonitor{})
	ctx := context.Background()

	// 40 lines = 40 chunks = 2 batches of 32 and 8.
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("line of searchable content\n")
	}

	result, err := svc.IngestText(ctx, b.String(), "doc-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)

	require.NotNil(t, result)
	assert.Equal(t, 32, result.EmbeddingCount, "first batch stays committed")
	assert.Equal(t, domain.StatusFailed, result.Status)

	count, err := store.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 32, count)

	doc, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, doc.Status)
	assert.Equal(t, 32, doc.EmbeddingCount)
}

func TestIngestText_ReingestCompletedDocumentIsIdempotent(t *testing.T) {
	provider := newFakeProvider(4)
	svc, store := newIngestService(t, provider)
	ctx := context.Background()

	text := strings.Repeat("Quarterly numbers held steady across all regions. ", 50)

	first, err := svc.IngestText(ctx, text, "report-q3")
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, first.Status)

	// Ingesting the same document id again replaces the old rows
	// instead of colliding with them.
	second, err := svc.IngestText(ctx, text, "report-q3")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, second.Status)
	assert.Equal(t, first.EmbeddingCount, second.EmbeddingCount)

	count, err := store.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.EmbeddingCount, count, "no stale rows survive re-ingestion")

	doc, err := store.GetDocument(ctx, "report-q3")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, doc.Status)
	assert.Equal(t, first.EmbeddingCount, doc.EmbeddingCount)
}

func TestIngestText_ReingestAfterFailureResumes(t *testing.T) {
	failing := newFakeProvider(4)
	failing.failOnCall = 2

	store := newTestStore(t)
	svc := NewIngestService(store, failing, passthroughRegistry{}, lineChunker{}, nopMonitor{})
	ctx := context.Background()

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("line of searchable content\n")
	}

	_, err := svc.IngestText(ctx, b.String(), "doc-1")
	require.Error(t, err)

	doc, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusFailed, doc.Status)

	// The document re-enters processing and completes over the same
	// store once the provider recovers.
	svc = NewIngestService(store, newFakeProvider(4), passthroughRegistry{}, lineChunker{}, nopMonitor{})

	result, err := svc.IngestText(ctx, b.String(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, result.Status)
	assert.Equal(t, 40, result.EmbeddingCount)

	count, err := store.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40, count)

	doc, err = store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, doc.Status)
	assert.Equal(t, 40, doc.EmbeddingCount)
}

func TestIngest_DimensionMismatchFails(t *testing.T) {
	provider := newFakeProvider(4)
	provider.embed = func(string) []float32 { return []float32{1, 2} } // wrong size

	store := newTestStore(t)
	svc := NewIngestService(store, provider, passthroughRegistry{}, lineChunker{}, nopMonitor{})

	_, err := svc.IngestText(context.Background(), "one line", "doc-1")
	var mismatch *domain.DimensionMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 4, mismatch.Want)
	assert.Equal(t, 2, mismatch.Got)
}

func TestIngest_ExtractsThroughRegistry(t *testing.T) {
	provider := newFakeProvider(4)
	store := newTestStore(t)
	svc := NewIngestService(store, provider, passthroughRegistry{}, lineChunker{}, nopMonitor{})
	ctx := context.Background()

	result, err := svc.Ingest(ctx, driving.IngestRequest{
		DocumentID: "doc-1",
		Data:       []byte("alpha\nbeta"),
		MIMEType:   "text/plain",
		Filename:   "notes.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.ChunkCount)

	doc, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", doc.Filename)
	assert.Equal(t, "notes.txt", doc.OriginalName, "original name defaults to filename")
	assert.Equal(t, "alpha\nbeta", doc.FullText)
}

func TestIngest_ProgressCallback(t *testing.T) {
	provider := newFakeProvider(4)
	store := newTestStore(t)

	var calls [][2]int
	svc := NewIngestService(store, provider, passthroughRegistry{}, lineChunker{}, nopMonitor{},
		WithBatchSize(2),
		WithProgress(func(completed, total int) {
			calls = append(calls, [2]int{completed, total})
		}))

	_, err := svc.IngestText(context.Background(), "a\nb\nc\nd\ne", "doc-1")
	require.NoError(t, err)

	require.Len(t, calls, 3)
	assert.Equal(t, [2]int{2, 5}, calls[0])
	assert.Equal(t, [2]int{4, 5}, calls[1])
	assert.Equal(t, [2]int{5, 5}, calls[2])
}

func TestDelete(t *testing.T) {
	provider := newFakeProvider(4)
	store := newTestStore(t)
	svc := NewIngestService(store, provider, passthroughRegistry{}, lineChunker{}, nopMonitor{})
	ctx := context.Background()

	_, err := svc.IngestText(ctx, "a\nb", "doc-1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "doc-1"))

	count, err := store.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	assert.ErrorIs(t, svc.Delete(ctx, "doc-1"), domain.ErrNotFound)
}
