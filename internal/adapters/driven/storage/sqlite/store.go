package sqlite

import (
	"context"
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/vectra-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/vectra-cli/internal/core/domain"
	"github.com/custodia-labs/vectra-cli/internal/core/ports/driven"
)

var _ driven.MetadataStore = (*Store)(nil)

// Store is the SQLite-backed metadata store. It is the sole source of
// truth for documents and embeddings; the vector index is derived from
// its rows.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.vectra/data/vector_store.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".vectra", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vector_store.db")

	// Open database with WAL mode for better concurrency. The pragmas
	// ride on the DSN so every pooled connection gets them; LIKE is
	// case-insensitive for ASCII by default and exact search is
	// contractually case-sensitive.
	db, err := sql.Open("sqlite", dbPath+
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"+
		"&_pragma=foreign_keys(ON)&_pragma=case_sensitive_like(ON)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents
			(id, filename, original_name, file_path, file_size, mime_type, upload_date, text_content, embedding_count, processing_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			original_name = excluded.original_name,
			file_path = excluded.file_path,
			file_size = excluded.file_size,
			mime_type = excluded.mime_type,
			text_content = excluded.text_content,
			embedding_count = excluded.embedding_count,
			processing_status = excluded.processing_status
	`, doc.ID, doc.Filename, doc.OriginalName, doc.SourcePath, doc.SizeBytes,
		doc.MIMEType, doc.UploadedAt, doc.FullText, doc.EmbeddingCount, string(doc.Status))

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// InsertEmbeddings persists one batch of (chunk, vector) pairs inside a
// single transaction. The dimension of every vector must match both the
// batch and any embeddings already committed to the store.
func (s *Store) InsertEmbeddings(ctx context.Context, documentID string, firstChunkIndex int, chunks []string, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks but %d vectors", domain.ErrInvalidInput, len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// The store has one fixed dimension, set by the first committed row.
	var existingDim sql.NullInt64
	row := tx.QueryRowContext(ctx, "SELECT LENGTH(embedding_vector) / 4 FROM embeddings ORDER BY id LIMIT 1")
	if err := row.Scan(&existingDim); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reading store dimension: %w", err)
	}

	dims := len(vectors[0])
	if existingDim.Valid && int(existingDim.Int64) != dims {
		return &domain.DimensionMismatchError{Want: int(existingDim.Int64), Got: dims}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO embeddings (document_id, chunk_index, text_chunk, embedding_vector, embedding_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, chunk := range chunks {
		if len(vectors[i]) != dims {
			return &domain.DimensionMismatchError{Want: dims, Got: len(vectors[i])}
		}

		blob := float32SliceToBytes(vectors[i])
		hash := md5.Sum(blob) //nolint:gosec // content fingerprint

		if _, err := stmt.ExecContext(ctx, documentID, firstChunkIndex+i, chunk,
			blob, hex.EncodeToString(hash[:]), now); err != nil {
			return fmt.Errorf("%w: inserting embedding %d: %v", domain.ErrStorageWrite, firstChunkIndex+i, err)
		}
	}

	if err := tx.Commit(); err != nil {
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

	res, err := s.db.ExecContext(ctx,
		"UPDATE documents SET processing_status = ?, embedding_count = ? WHERE id = ?",
		string(status), embeddingCount, id)
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, original_name, file_path, file_size, mime_type, upload_date, text_content, embedding_count, processing_status
		FROM documents WHERE id = ?
	`, id)

	return scanDocument(row)
}

// ListDocuments returns all documents, most recently uploaded first.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
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
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteEmbeddings removes every embedding row for a document. A
// document without rows is a no-op.
func (s *Store) DeleteEmbeddings(ctx context.Context, documentID string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM embeddings WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting embeddings: %w", err)
	}
	return nil
}

// GetEmbedding retrieves one embedding row by its store-assigned id.
func (s *Store) GetEmbedding(ctx context.Context, rowID int64) (*domain.EmbeddingRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, chunk_index, text_chunk, embedding_vector, embedding_hash, created_at
		FROM embeddings WHERE id = ?
	`, rowID)

	return scanEmbedding(row)
}

// LoadAllEmbeddings returns every (row id, vector) pair ordered by
// ascending row id.
func (s *Store) LoadAllEmbeddings(ctx context.Context) ([]domain.VectorEntry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, embedding_vector FROM embeddings ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var entries []domain.VectorEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var entry domain.VectorEntry
		var blob []byte
		if err := rows.Scan(&entry.RowID, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		entry.Vector = bytesToFloat32Slice(blob)
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
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return count, nil
}

// Dimension returns the store's fixed vector dimension, or 0 when the
// store holds no embeddings yet.
func (s *Store) Dimension(ctx context.Context) (int, error) {
	var dim sql.NullInt64
	row := s.db.QueryRowContext(ctx, "SELECT LENGTH(embedding_vector) / 4 FROM embeddings ORDER BY id LIMIT 1")
	if err := row.Scan(&dim); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading store dimension: %w", err)
	}
	return int(dim.Int64), nil
}

// QueryExact returns embedding rows whose chunk text contains the
// substring, ordered by ascending insertion id and capped at limit.
func (s *Store) QueryExact(ctx context.Context, substring string, limit int) ([]domain.EmbeddingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, chunk_index, text_chunk, embedding_vector, embedding_hash, created_at
		FROM embeddings
		WHERE text_chunk LIKE '%' || ? || '%'
		ORDER BY id ASC
		LIMIT ?
	`, substring, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exact matches: %w", err)
	}
	defer rows.Close()

	var records []domain.EmbeddingRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rec domain.EmbeddingRecord
		var blob []byte
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.ChunkIndex, &rec.TextChunk,
			&blob, &rec.Hash, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning exact match: %w", err)
		}
		rec.Vector = bytesToFloat32Slice(blob)
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

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO vector_index (index_type, embedding_count, built_at) VALUES (?, ?, ?)",
		indexType, count, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording index build: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var status string

	if err := row.Scan(&doc.ID, &doc.Filename, &doc.OriginalName, &doc.SourcePath,
		&doc.SizeBytes, &doc.MIMEType, &doc.UploadedAt, &doc.FullText,
		&doc.EmbeddingCount, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Status = domain.ProcessingStatus(status)
	return &doc, nil
}

// scanEmbedding scans a single embedding row.
func scanEmbedding(row *sql.Row) (*domain.EmbeddingRecord, error) {
	var rec domain.EmbeddingRecord
	var blob []byte

	if err := row.Scan(&rec.ID, &rec.DocumentID, &rec.ChunkIndex, &rec.TextChunk,
		&blob, &rec.Hash, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning embedding: %w", err)
	}

	rec.Vector = bytesToFloat32Slice(blob)
	return &rec, nil
}
