package driven

import "context"

// Extractor converts raw document bytes into plain text.
// Each extractor handles specific MIME types (e.g., PDF, Markdown).
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific extractors should return 50-89.
	// Fallback extractors should return 1-9.
	Priority() int

	// Extract converts raw bytes to plain text. An error means this
	// variant could not parse the input; the registry then degrades to
	// the fallback decode rather than losing the document.
	Extract(ctx context.Context, data []byte) (string, error)
}

// ExtractorRegistry selects an extractor by MIME type and guarantees a
// best-effort result: extraction never fails from the caller's view.
type ExtractorRegistry interface {
	// Extract runs the highest-priority extractor registered for the
	// MIME type, falling back to a plain decode of the raw bytes when no
	// extractor matches or the matched extractor errors.
	Extract(ctx context.Context, data []byte, mimeType string) string
}
