package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/vectra-cli/internal/core/domain"
	"github.com/custodia-labs/vectra-cli/internal/core/ports/driving"
	"github.com/custodia-labs/vectra-cli/internal/core/services"
)

var ingestID string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest documents into the vector store",
	Long: `Extracts text from each file, splits it into overlapping chunks,
generates embeddings in batches and persists everything. The document id
is derived from the file content, so re-ingesting an unchanged file is
idempotent.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "document id override (single file only)")
	rootCmd.AddCommand(ingestCmd)
}

// mimeByExtension maps known file extensions to the MIME types the
// extractor registry routes on.
var mimeByExtension = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".html": "text/html",
	".htm":  "text/html",
	".csv":  "text/csv",
	".json": "application/json",
	".xml":  "application/xml",
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

func detectMIMEType(path string) string {
	if mime, ok := mimeByExtension[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// progressReporter renders a per-document progress bar on stderr. The
// bar is created on the first callback, when the chunk total is known.
func progressReporter() services.ProgressFunc {
	var bar *progressbar.ProgressBar
	return func(completed, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("embedding"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(completed)
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest service not configured")
	}
	if ingestID != "" && len(args) > 1 {
		return fmt.Errorf("--id cannot be used with multiple files")
	}

	ctx := context.Background()

	failures := 0
	for _, path := range args {
		if err := ingestFile(ctx, cmd, path); err != nil {
			cmd.PrintErrf("Error ingesting %s: %v\n", path, err)
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(args))
	}
	return nil
}

func ingestFile(ctx context.Context, cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Content-addressed id: unchanged files re-ingest onto the same row.
	docID := ingestID
	if docID == "" {
		sum := sha256.Sum256(data)
		docID = hex.EncodeToString(sum[:16])
	}

	result, err := ingestService.Ingest(ctx, driving.IngestRequest{
		DocumentID:   docID,
		Data:         data,
		MIMEType:     detectMIMEType(path),
		Filename:     filepath.Base(path),
		OriginalName: filepath.Base(path),
		SourcePath:   path,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return fmt.Errorf("no embedding provider configured: %w", err)
		}
		return err
	}

	cmd.Printf("%s: %d chunks, %d embeddings (%s)\n",
		filepath.Base(path), result.ChunkCount, result.EmbeddingCount, result.Status)
	return nil
}
