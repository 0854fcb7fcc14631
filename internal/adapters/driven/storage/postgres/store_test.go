package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vectra-cli/internal/core/domain"
)

// setupTestStore connects to the database named by VECTRA_POSTGRES_DSN.
// Tests are skipped when the variable is unset so the suite runs without
// a PostgreSQL instance.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("VECTRA_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("VECTRA_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = store.pool.Exec(ctx, "TRUNCATE documents, embeddings, vector_index")
		assert.NoError(t, store.Close())
	})

	_, err = store.pool.Exec(ctx, "TRUNCATE documents, embeddings, vector_index")
	require.NoError(t, err)

	return store
}

func insertTestDocument(t *testing.T, store *Store, id string) {
	t.Helper()
	doc := &domain.Document{
		ID:           id,
		Filename:     id + ".txt",
		OriginalName: id + ".txt",
		MIMEType:     "text/plain",
		UploadedAt:   time.Now().UTC().Truncate(time.Second),
		Status:       domain.StatusProcessing,
	}
	require.NoError(t, store.UpsertDocument(context.Background(), doc))
}

func TestRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	insertTestDocument(t, store, "doc-1")

	vectors := [][]float32{{0.1, -2.5, 3.75}, {4.25, 5.0, -6.125}}
	chunks := []string{"first chunk", "second chunk"}
	require.NoError(t, store.InsertEmbeddings(ctx, "doc-1", 0, chunks, vectors))

	entries, err := store.LoadAllEmbeddings(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, vectors[0], entries[0].Vector)

	dim, err := store.Dimension(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, dim)

	rec, err := store.GetEmbedding(ctx, entries[1].RowID)
	require.NoError(t, err)
	assert.Equal(t, "second chunk", rec.TextChunk)
	assert.Equal(t, 1, rec.ChunkIndex)
}

func TestDimensionMismatchRejectsBatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	insertTestDocument(t, store, "doc-1")
	require.NoError(t, store.InsertEmbeddings(ctx, "doc-1", 0,
		[]string{"a"}, [][]float32{{1, 2, 3}}))

	err := store.InsertEmbeddings(ctx, "doc-1", 1,
		[]string{"b"}, [][]float32{{1, 2, 3, 4}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	count, err := store.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteCascades(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	insertTestDocument(t, store, "doc-1")
	require.NoError(t, store.InsertEmbeddings(ctx, "doc-1", 0,
		[]string{"a", "b"}, [][]float32{{1, 2}, {3, 4}}))

	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

	count, err := store.CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestQueryExactCaseSensitive(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	insertTestDocument(t, store, "doc-1")
	require.NoError(t, store.InsertEmbeddings(ctx, "doc-1", 0,
		[]string{"Revenue grew.", "revenue fell."}, [][]float32{{1}, {2}}))

	records, err := store.QueryExact(ctx, "revenue", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "revenue fell.", records[0].TextChunk)
}
