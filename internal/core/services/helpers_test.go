package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vectra-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/vectra-cli/internal/core/ports/driven"
)

// fakeProvider is a deterministic embedding provider. Each text embeds
// to a vector derived from its length, so identical texts embed
// identically and distinct texts (almost always) differ.
type fakeProvider struct {
	dims      int
	callCount int

	// failOnCall makes EmbedBatch fail on the n-th call (1-based).
	failOnCall int

	// embed overrides the default embedding when set.
	embed func(text string) []float32
}

func newFakeProvider(dims int) *fakeProvider {
	return &fakeProvider{dims: dims}
}

func (p *fakeProvider) vector(text string) []float32 {
	if p.embed != nil {
		return p.embed(text)
	}
	v := make([]float32, p.dims)
	for i := range v {
		v[i] = float32(len(text)%97) + float32(i)
	}
	return v
}

func (p *fakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	return p.vector(text), nil
}

func (p *fakeProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	p.callCount++
	if p.failOnCall > 0 && p.callCount >= p.failOnCall {
		return nil, fmt.Errorf("provider outage")
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = p.vector(text)
	}
	return vectors, nil
}

func (p *fakeProvider) Dimensions() int   { return p.dims }
func (p *fakeProvider) ModelName() string { return "fake-model" }
func (p *fakeProvider) Close() error      { return nil }

var _ driven.EmbeddingProvider = (*fakeProvider)(nil)

// nopMonitor satisfies the monitor port without doing anything.
type nopMonitor struct{}

func (nopMonitor) Check() {}

// passthroughRegistry decodes bytes as text regardless of MIME type.
type passthroughRegistry struct{}

func (passthroughRegistry) Extract(_ context.Context, data []byte, _ string) string {
	return string(data)
}

// lineChunker splits on newlines, one chunk per non-empty line. Tests
// that need precise chunk counts use it instead of the real chunker.
type lineChunker struct{}

func (lineChunker) Chunk(text string) []string {
	var chunks []string
	start := 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == '\n' {
			if line := text[start:i]; line != "" {
				chunks = append(chunks, line)
			}
			start = i + 1
		}
	}
	return chunks
}

// newTestStore opens a temporary SQLite store.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}
