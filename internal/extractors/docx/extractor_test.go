package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"
)

// buildDocx assembles a minimal .docx archive around the given
// document.xml body.
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("creating archive entry: %v", err)
	}
	if _, err := f.Write([]byte(documentXML)); err != nil {
		t.Fatalf("writing archive entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}
	return buf.Bytes()
}

func TestExtract_Paragraphs(t *testing.T) {
	e := New()
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	text, err := e.Extract(context.Background(), buildDocx(t, doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(text, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %q", len(lines), text)
	}
	if lines[0] != "First paragraph." {
		t.Errorf("unexpected first paragraph: %q", lines[0])
	}
	if lines[1] != "Second paragraph." {
		t.Errorf("split runs should join within a paragraph: %q", lines[1])
	}
}

func TestExtract_NotAnArchive(t *testing.T) {
	e := New()
	if _, err := e.Extract(context.Background(), []byte("plain bytes")); err == nil {
		t.Error("expected error for non-zip input")
	}
}

func TestExtract_MissingDocumentXML(t *testing.T) {
	e := New()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, _ := w.Create("word/styles.xml")
	_, _ = f.Write([]byte("<styles/>"))
	_ = w.Close()

	if _, err := e.Extract(context.Background(), buf.Bytes()); err == nil {
		t.Error("expected error for archive without document.xml")
	}
}
