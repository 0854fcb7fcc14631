package xmlfmt

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/custodia-labs/vectra-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles XML documents. The document is parsed and
// re-serialized, which validates it and normalises whitespace; element
// structure is kept because tag names often carry meaning.
type Extractor struct{}

// New creates a new XML extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/xml", "text/xml"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Generic MIME extractor
}

// Extract parses the XML token stream and re-serializes it.
func (e *Extractor) Extract(_ context.Context, data []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var buf bytes.Buffer
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing xml: %w", err)
		}
		if err := encoder.EncodeToken(tok); err != nil {
			return "", fmt.Errorf("serializing xml: %w", err)
		}
	}
	if err := encoder.Flush(); err != nil {
		return "", fmt.Errorf("serializing xml: %w", err)
	}
	return buf.String(), nil
}
