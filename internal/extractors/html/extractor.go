package html

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/vectra-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles HTML documents by stripping tags.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Generic MIME extractor
}

// Extract converts an HTML document to plain text with tags stripped and
// entities unescaped.
func (e *Extractor) Extract(_ context.Context, data []byte) (string, error) {
	return stripHTML(string(data)), nil
}

var (
	scriptRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	blockRe  = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|br|table|section|article)>|<br\s*/?>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`[ \t]+`)
	multiNL  = regexp.MustCompile(`\n{3,}`)
)

// stripHTML removes markup, keeping block boundaries as line breaks.
func stripHTML(content string) string {
	content = scriptRe.ReplaceAllString(content, "")
	content = styleRe.ReplaceAllString(content, "")
	content = blockRe.ReplaceAllString(content, "\n")
	content = tagRe.ReplaceAllString(content, " ")
	content = html.UnescapeString(content)
	content = spaceRe.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	content = strings.Join(lines, "\n")
	content = multiNL.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
