// Package chunker splits extracted text into overlapping,
// sentence-boundary-aware windows.
package chunker

import "strings"

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// boundaryScan is how far back from a cut point to look for a sentence
// terminator before giving up and cutting at the raw position.
const boundaryScan = 100

// Processor splits text into overlapping chunks, preferring sentence
// boundaries. Chunking is a pure function of its inputs: identical text
// always yields identical chunk boundaries.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Overlap must stay strictly below chunk size or the window never
	// advances.
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// ChunkSize returns the configured window size.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int { return p.overlap }

// Chunk splits text into an ordered sequence of chunk strings.
// Positions are counted in runes, so a cut never splits a multi-byte
// character. Whitespace-only slices are dropped; the final partial
// chunk is kept even when short. Empty input yields an empty list,
// never an error.
func (p *Processor) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= p.chunkSize {
		return []string{strings.TrimSpace(text)}
	}

	estimated := len(runes)/(p.chunkSize-p.overlap) + 1
	chunks := make([]string, 0, estimated)

	start := 0
	for start < len(runes) {
		end := start + p.chunkSize

		if end >= len(runes) {
			// Final partial chunk.
			if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
				chunks = append(chunks, tail)
			}
			break
		}

		end = p.sentenceBoundary(runes, start, end)

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		// A boundary cut near the window start could otherwise move the
		// window backwards.
		next := end - p.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// sentenceBoundary scans backward up to boundaryScan runes from end for
// a sentence terminator and cuts just after it. Falls back to the raw
// end when no terminator is found in the window.
func (p *Processor) sentenceBoundary(runes []rune, start, end int) int {
	floor := end - boundaryScan
	if floor < start {
		floor = start
	}
	for i := end; i > floor; i-- {
		switch runes[i] {
		case '.', '!', '?':
			return i + 1
		}
	}
	return end
}
