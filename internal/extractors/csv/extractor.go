package csv

import (
	"bytes"
	"context"
	stdcsv "encoding/csv"
	"fmt"
	"strings"

	"github.com/custodia-labs/vectra-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles CSV documents by rendering them as an aligned text
// table, which keeps header/value adjacency visible to the embedder.
type Extractor struct{}

// New creates a new CSV extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/csv"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Generic MIME extractor
}

// Extract tabularises CSV content to plain text.
func (e *Extractor) Extract(_ context.Context, data []byte) (string, error) {
	reader := stdcsv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // Tolerate ragged rows

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parsing csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	widths := columnWidths(records)

	var b strings.Builder
	for _, record := range records {
		for i, field := range record {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(field)
			if pad := widths[i] - len(field); pad > 0 && i < len(record)-1 {
				b.WriteString(strings.Repeat(" ", pad))
			}
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func columnWidths(records [][]string) []int {
	var widths []int
	for _, record := range records {
		for i, field := range record {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if len(field) > widths[i] {
				widths[i] = len(field)
			}
		}
	}
	return widths
}
