package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [text] [doc-id]",
	Short: "Generate embeddings for raw text",
	Long: `Chunks the given text, generates embeddings and persists them under
the given document id. A JSON summary is printed to stdout, making the
command suitable for scripting.`,
	Args: cobra.ExactArgs(2),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest service not configured")
	}

	text, docID := args[0], args[1]

	result, err := ingestService.IngestText(context.Background(), text, docID)
	if err != nil {
		// Machine-readable failure on stdout; the error still drives the
		// process exit code.
		payload := map[string]any{"error": err.Error()}
		if result != nil {
			payload["document_id"] = result.DocumentID
			payload["embedding_count"] = result.EmbeddingCount
			payload["status"] = result.Status
		}
		data, merr := json.MarshalIndent(payload, "", "  ")
		if merr == nil {
			cmd.Println(string(data))
		}
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
