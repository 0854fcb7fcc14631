package extractors

import (
	"context"

	"github.com/custodia-labs/vectra-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vectra-cli/internal/extractors/csv"
	"github.com/custodia-labs/vectra-cli/internal/extractors/docx"
	"github.com/custodia-labs/vectra-cli/internal/extractors/html"
	"github.com/custodia-labs/vectra-cli/internal/extractors/jsonfmt"
	"github.com/custodia-labs/vectra-cli/internal/extractors/markdown"
	"github.com/custodia-labs/vectra-cli/internal/extractors/pdf"
	"github.com/custodia-labs/vectra-cli/internal/extractors/plaintext"
	"github.com/custodia-labs/vectra-cli/internal/extractors/xmlfmt"
	"github.com/custodia-labs/vectra-cli/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry routes raw bytes to the highest-priority extractor registered
// for their MIME type.
type Registry struct {
	byMIME   map[string]driven.Extractor
	fallback driven.Extractor
}

// NewRegistry builds a registry from the given extractors. When two
// extractors claim the same MIME type the higher priority wins.
// fallback handles unknown types and failed extractions.
func NewRegistry(fallback driven.Extractor, list ...driven.Extractor) *Registry {
	r := &Registry{
		byMIME:   make(map[string]driven.Extractor),
		fallback: fallback,
	}
	for _, e := range append([]driven.Extractor{fallback}, list...) {
		for _, mime := range e.SupportedMIMETypes() {
			if existing, ok := r.byMIME[mime]; ok && existing.Priority() >= e.Priority() {
				continue
			}
			r.byMIME[mime] = e
		}
	}
	return r
}

// Default returns a registry covering every built-in format variant.
// Extending formats means registering another variant, not editing a
// dispatch chain.
func Default() *Registry {
	return NewRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		csv.New(),
		jsonfmt.New(),
		xmlfmt.New(),
		docx.New(),
		pdf.New(),
	)
}

// Extract converts data to plain text. It never fails: extractor errors
// degrade to the fallback decode of the raw bytes.
func (r *Registry) Extract(ctx context.Context, data []byte, mimeType string) string {
	e, ok := r.byMIME[mimeType]
	if !ok {
		logger.Debug("no extractor for MIME type %q, using fallback decode", mimeType)
		return r.fallbackDecode(ctx, data)
	}

	text, err := e.Extract(ctx, data)
	if err != nil {
		logger.Warn("extraction failed for %q: %v (degrading to fallback decode)", mimeType, err)
		return r.fallbackDecode(ctx, data)
	}
	return text
}

func (r *Registry) fallbackDecode(ctx context.Context, data []byte) string {
	text, err := r.fallback.Extract(ctx, data)
	if err != nil {
		// The plaintext fallback cannot fail, but keep the document
		// either way.
		return string(data)
	}
	return text
}
