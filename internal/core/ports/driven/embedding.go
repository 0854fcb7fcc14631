package driven

import "context"

// EmbeddingProvider generates vector embeddings from text.
// The neural model itself is external; this port consumes it as an
// injected text[] -> vector[][] capability of fixed output dimension.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingProvider interface {
	// Embed generates a vector embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. This is the
	// call ingestion batches through and is the only expected
	// long-running operation in the engine.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// It must match the store's fixed dimension; a mismatch is a fatal
	// configuration error, never a silent truncation.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
