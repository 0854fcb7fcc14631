package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/vectra-cli/internal/core/domain"
)

var (
	searchExact bool
	searchLimit int
	searchJSON  bool
)

// Result rendering styles.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	snippetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the vector store",
	Long: `Runs semantic nearest-neighbour search over the embedded corpus, or a
case-sensitive exact substring search with --exact. Semantic search
needs at least 10 embeddings in the store.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchExact, "exact", false, "exact substring matching instead of semantic search")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return fmt.Errorf("search service not configured")
	}

	query := args[0]
	ctx := context.Background()

	var results []domain.SearchResult
	var err error
	if searchExact {
		results, err = searchService.ExactSearch(ctx, query, searchLimit)
	} else {
		results, err = searchService.SemanticSearch(ctx, query, searchLimit)
	}
	if err != nil {
		var unavailable *domain.IndexUnavailableError
		if errors.As(err, &unavailable) {
			return fmt.Errorf("semantic search needs at least %d embeddings, the store has %d (try --exact)",
				unavailable.MinimumRequired, unavailable.EmbeddingCount)
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i := range results {
		r := &results[i]
		cmd.Printf("%s %s\n",
			titleStyle.Render(fmt.Sprintf("[%d] %s", r.Rank, r.DocumentName)),
			scoreStyle.Render(fmt.Sprintf("(%.3f %s)", r.SimilarityScore, r.MatchType)))
		cmd.Printf("    %s\n\n", snippetStyle.Render(snippet(r.TextChunk, 200)))
	}

	return nil
}

// snippet truncates chunk text for terminal display.
func snippet(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
