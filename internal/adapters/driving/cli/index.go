package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vectra-cli/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the in-memory vector index",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Rebuild the vector index from stored embeddings",
	RunE:  runIndexBuild,
}

var indexInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the current index snapshot",
	RunE:  runIndexInfo,
}

func init() {
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexInfoCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexBuild(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return fmt.Errorf("search service not configured")
	}

	info, err := searchService.RebuildIndex(context.Background())
	if err != nil {
		var unavailable *domain.IndexUnavailableError
		if errors.As(err, &unavailable) {
			return fmt.Errorf("not enough embeddings to build an index: have %d, need %d",
				unavailable.EmbeddingCount, unavailable.MinimumRequired)
		}
		return err
	}

	cmd.Printf("Built %s index: %d vectors, %d dimensions (generation %d)\n",
		info.Type, info.Size, info.Dimensions, info.Generation)
	return nil
}

func runIndexInfo(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return fmt.Errorf("search service not configured")
	}

	info := searchService.IndexInfo()
	if info == nil {
		cmd.Println("No index built in this session. Run 'vectra index build' or a semantic search.")
		return nil
	}

	cmd.Printf("Type:        %s\n", info.Type)
	cmd.Printf("Vectors:     %d\n", info.Size)
	cmd.Printf("Dimensions:  %d\n", info.Dimensions)
	cmd.Printf("Generation:  %d\n", info.Generation)
	cmd.Printf("Built at:    %s\n", info.BuiltAt.Format("2006-01-02 15:04:05"))
	return nil
}
