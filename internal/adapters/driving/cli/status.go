package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vectra-cli/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store and search availability",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if metadataStore == nil || searchService == nil {
		return fmt.Errorf("search service not configured")
	}

	ctx := context.Background()

	docs, err := metadataStore.ListDocuments(ctx)
	if err != nil {
		return err
	}

	availability, err := searchService.Availability(ctx)
	if err != nil {
		return err
	}

	dim, err := metadataStore.Dimension(ctx)
	if err != nil {
		return err
	}

	completed, failed := 0, 0
	for i := range docs {
		switch docs[i].Status {
		case domain.StatusCompleted:
			completed++
		case domain.StatusFailed:
			failed++
		}
	}

	cmd.Printf("Documents:      %d (%d completed, %d failed)\n", len(docs), completed, failed)
	cmd.Printf("Embeddings:     %d\n", availability.EmbeddingCount)
	if dim > 0 {
		cmd.Printf("Dimensions:     %d\n", dim)
	}
	if appConfig != nil {
		cmd.Printf("Provider:       %s (%s)\n", appConfig.Provider, appConfig.Model)
	}
	cmd.Printf("Semantic search: %s\n", availability.Message)

	if info := searchService.IndexInfo(); info != nil {
		cmd.Printf("Index:          %s, %d vectors, generation %d\n",
			info.Type, info.Size, info.Generation)
	}

	return nil
}
