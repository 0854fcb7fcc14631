// Package postgres provides a PostgreSQL-backed MetadataStore using the
// pgvector extension. It mirrors the SQLite adapter's contract so the
// two backends are interchangeable behind the port; pgvector additionally
// lets the database itself answer nearest-neighbour queries, which the
// in-memory index path does not require but operators may use directly.
package postgres

import (
	"context"
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/vectra-cli/internal/core/domain"
	"github.com/custodia-labs/vectra-cli/internal/core/ports/driven"
)

var _ driven.MetadataStore = (*Store)(nil)

// Store is the PostgreSQL metadata store.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database at dsn and ensures the schema
// exists. The pgvector extension must be installable by the connecting
// role.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("creating vector extension: %w", err)
	}

	// The embedding column is dimensionless on purpose: the store's
	// dimension is fixed by its first committed row, not by DDL.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			original_name TEXT NOT NULL,
			file_path TEXT NOT NULL DEFAULT '',
			file_size BIGINT NOT NULL DEFAULT 0,
			mime_type TEXT NOT NULL DEFAULT '',
			upload_date TIMESTAMPTZ NOT NULL,
			text_content TEXT NOT NULL DEFAULT '',
			embedding_count INTEGER NOT NULL DEFAULT 0,
			processing_status TEXT NOT NULL DEFAULT 'pending'
		)`,
		`CREATE TABLE IF NOT EXISTS embeddings (
			id BIGSERIAL PRIMARY KEY,
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			chunk_index INTEGER NOT NULL,
			text_chunk TEXT NOT NULL,
			embedding_vector vector NOT NULL,
			embedding_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (document_id, chunk_index)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_embeddings_document_id ON embeddings(document_id)`,
		`CREATE TABLE IF NOT EXISTS vector_index (
			id BIGSERIAL PRIMARY KEY,
			index_type TEXT NOT NULL,
			embedding_count INTEGER NOT NULL,
			built_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// UpsertDocument stores or updates a document, idempotent by ID.
func (s *Store) UpsertDocument(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is empty", domain.ErrInvalidInput)
	}
	if !doc.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, doc.Status)
	}

	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents
			(id, filename, original_name, file_path, file_size, mime_type, upload_date, text_content, embedding_count, processing_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			filename = EXCLUDED.filename,
			original_name = EXCLUDED.original_name,
			file_path = EXCLUDED.file_path,
			file_size = EXCLUDED.file_size,
			mime_type = EXCLUDED.mime_type,
			text_content = EXCLUDED.text_content,
			embedding_count = EXCLUDED.embedding_count,
			processing_status = EXCLUDED.processing_status
	`, doc.ID, doc.Filename, doc.OriginalName, doc.SourcePath, doc.SizeBytes,
		doc.MIMEType, doc.UploadedAt, doc.FullText, doc.EmbeddingCount, string(doc.Status))

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// InsertEmbeddings persists one batch of (chunk, vector) pairs inside a
// single transaction.
func (s *Store) InsertEmbeddings(ctx context.Context, documentID string, firstChunkIndex int, chunks []string, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks but %d vectors", domain.ErrInvalidInput, len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var existingDim *int
	row := tx.QueryRow(ctx, "SELECT vector_dims(embedding_vector) FROM embeddings ORDER BY id LIMIT 1")
	if err := row.Scan(&existingDim); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("reading store dimension: %w", err)
	}

	dims := len(vectors[0])
	if existingDim != nil && *existingDim != dims {
		return &domain.DimensionMismatchError{Want: *existingDim, Got: dims}
	}

	now := time.Now().UTC()
	for i, chunk := range chunks {
		if len(vectors[i]) != dims {
			return &domain.DimensionMismatchError{Want: dims, Got: len(vectors[i])}
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO embeddings (document_id, chunk_index, text_chunk, embedding_vector, embedding_hash, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, documentID, firstChunkIndex+i, chunk,
			pgvector.NewVector(vectors[i]), vectorHash(vectors[i]), now); err != nil {
			return fmt.Errorf("%w: inserting embedding %d: %v", domain.ErrStorageWrite, firstChunkIndex+i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: committing batch: %v", domain.ErrStorageWrite, err)
	}
	return nil
}

// UpdateDocumentStatus transitions a document's lifecycle state and
// records its embedding count.
func (s *Store) UpdateDocumentStatus(ctx context.Context, id string, status domain.ProcessingStatus, embeddingCount int) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}

	tag, err := s.pool.Exec(ctx,
		"UPDATE documents SET processing_status = $1, embedding_count = $2 WHERE id = $3",
		string(status), embeddingCount, id)
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, filename, original_name, file_path, file_size, mime_type, upload_date, text_content, embedding_count, processing_status
		FROM documents WHERE id = $1
	`, id)

	var doc domain.Document
	var status string
	if err := row.Scan(&doc.ID, &doc.Filename, &doc.OriginalName, &doc.SourcePath,
		&doc.SizeBytes, &doc.MIMEType, &doc.UploadedAt, &doc.FullText,
		&doc.EmbeddingCount, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Status = domain.ProcessingStatus(status)
	return &doc, nil
}

// ListDocuments returns all documents, most recently uploaded first.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, filename, original_name, file_path, file_size, mime_type, upload_date, text_content, embedding_count, processing_status
		FROM documents
		ORDER BY upload_date DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		var status string
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.OriginalName, &doc.SourcePath,
			&doc.SizeBytes, &doc.MIMEType, &doc.UploadedAt, &doc.FullText,
			&doc.EmbeddingCount, &status); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.Status = domain.ProcessingStatus(status)
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// DeleteDocument removes a document; the schema cascades the delete to
// its embeddings.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteEmbeddings removes every embedding row for a document. A
// document without rows is a no-op.
func (s *Store) DeleteEmbeddings(ctx context.Context, documentID string) error {
	if _, err := s.pool.Exec(ctx,
		"DELETE FROM embeddings WHERE document_id = $1", documentID); err != nil {
		return fmt.Errorf("deleting embeddings: %w", err)
	}
	return nil
}

// GetEmbedding retrieves one embedding row by its store-assigned id.
func (s *Store) GetEmbedding(ctx context.Context, rowID int64) (*domain.EmbeddingRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, document_id, chunk_index, text_chunk, embedding_vector, embedding_hash, created_at
		FROM embeddings WHERE id = $1
	`, rowID)

	var rec domain.EmbeddingRecord
	var vec pgvector.Vector
	if err := row.Scan(&rec.ID, &rec.DocumentID, &rec.ChunkIndex, &rec.TextChunk,
		&vec, &rec.Hash, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning embedding: %w", err)
	}
	rec.Vector = vec.Slice()
	return &rec, nil
}

// LoadAllEmbeddings returns every (row id, vector) pair ordered by
// ascending row id.
func (s *Store) LoadAllEmbeddings(ctx context.Context) ([]domain.VectorEntry, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, embedding_vector FROM embeddings ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var entries []domain.VectorEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var entry domain.VectorEntry
		var vec pgvector.Vector
		if err := rows.Scan(&entry.RowID, &vec); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		entry.Vector = vec.Slice()
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	return entries, nil
}

// CountEmbeddings returns the total number of embedding rows.
func (s *Store) CountEmbeddings(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return count, nil
}

// Dimension returns the store's fixed vector dimension, or 0 when the
// store holds no embeddings yet.
func (s *Store) Dimension(ctx context.Context) (int, error) {
	var dim int
	row := s.pool.QueryRow(ctx, "SELECT vector_dims(embedding_vector) FROM embeddings ORDER BY id LIMIT 1")
	if err := row.Scan(&dim); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading store dimension: %w", err)
	}
	return dim, nil
}

// QueryExact returns embedding rows whose chunk text contains the
// substring, ordered by ascending insertion id and capped at limit.
func (s *Store) QueryExact(ctx context.Context, substring string, limit int) ([]domain.EmbeddingRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, document_id, chunk_index, text_chunk, embedding_vector, embedding_hash, created_at
		FROM embeddings
		WHERE position($1 IN text_chunk) > 0
		ORDER BY id ASC
		LIMIT $2
	`, substring, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exact matches: %w", err)
	}
	defer rows.Close()

	var records []domain.EmbeddingRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rec domain.EmbeddingRecord
		var vec pgvector.Vector
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.ChunkIndex, &rec.TextChunk,
			&vec, &rec.Hash, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning exact match: %w", err)
		}
		rec.Vector = vec.Slice()
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating exact matches: %w", err)
	}

	return records, nil
}

// RecordIndexBuild appends observability metadata about an index build.
func (s *Store) RecordIndexBuild(ctx context.Context, indexType string) error {
	count, err := s.CountEmbeddings(ctx)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		"INSERT INTO vector_index (index_type, embedding_count, built_at) VALUES ($1, $2, $3)",
		indexType, count, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording index build: %w", err)
	}
	return nil
}

// vectorHash fingerprints a vector's little-endian byte encoding, the
// same encoding the SQLite backend stores, so hashes match across
// backends.
func vectorHash(vector []float32) string {
	buf := make([]byte, len(vector)*4)
	for i, f := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	sum := md5.Sum(buf) //nolint:gosec // content fingerprint
	return hex.EncodeToString(sum[:])
}
