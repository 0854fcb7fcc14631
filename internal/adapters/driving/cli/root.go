// Package cli implements the vectra command line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/vectra-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/vectra-cli/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/vectra-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/vectra-cli/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/vectra-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/vectra-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vectra-cli/internal/core/ports/driving"
	"github.com/custodia-labs/vectra-cli/internal/core/services"
	"github.com/custodia-labs/vectra-cli/internal/extractors"
	"github.com/custodia-labs/vectra-cli/internal/index"
	"github.com/custodia-labs/vectra-cli/internal/logger"
	"github.com/custodia-labs/vectra-cli/internal/memory"
	"github.com/custodia-labs/vectra-cli/internal/postprocessors/chunker"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	storePath  string
	configPath string
	verbose    bool
)

// Services wired by initServices. Tests inject fakes directly.
var (
	ingestService driving.IngestService
	searchService driving.SearchService
	metadataStore driven.MetadataStore
	appConfig     *configfile.Config
)

// newProvider builds the embedding provider from config. Swappable in
// tests.
var newProvider = func(cfg *configfile.Config) (driven.EmbeddingProvider, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewProvider(openai.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	case "", "ollama":
		return ollama.NewProvider(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vectra",
	Short: "Document embedding and vector search",
	Long: `Vectra ingests documents, generates vector embeddings and answers
semantic and exact-match queries over them from the command line.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if cmd.Name() == "version" {
			return nil
		}
		return initServices()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "data directory for the vector store (default ~/.vectra/data)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.vectra/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging to stderr")
}

// initServices wires the store, provider and services from config.
// An already-injected store (tests) leaves the wiring alone.
func initServices() error {
	if metadataStore != nil {
		return nil
	}

	cfg, err := configfile.Load(configPath)
	if err != nil {
		return err
	}
	appConfig = cfg

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	metadataStore = store

	provider, err := newProvider(cfg)
	if err != nil {
		// Semantic operations degrade to ErrEmbeddingUnavailable; exact
		// search and document management still work.
		logger.Warn("embedding provider unavailable: %v", err)
		provider = nil
	}

	monitorOpts := []memory.Option{}
	if cfg.MemoryBudgetMB > 0 {
		monitorOpts = append(monitorOpts, memory.WithBudget(uint64(cfg.MemoryBudgetMB)<<20))
	}
	if cfg.MemoryThreshold > 0 {
		monitorOpts = append(monitorOpts, memory.WithThreshold(cfg.MemoryThreshold))
	}

	ingestService = services.NewIngestService(
		store,
		provider,
		extractors.Default(),
		chunker.New(
			chunker.WithChunkSize(cfg.ChunkSize),
			chunker.WithOverlap(cfg.ChunkOverlap),
		),
		memory.NewMonitor(monitorOpts...),
		services.WithBatchSize(cfg.BatchSize),
		services.WithProgress(progressReporter()),
	)
	searchService = services.NewSearchService(store, provider, index.NewBuilder())
	return nil
}

func openStore(cfg *configfile.Config) (driven.MetadataStore, error) {
	if cfg.Storage.Backend == "postgres" {
		return postgres.NewStore(context.Background(), cfg.Storage.PostgresDSN)
	}
	return sqlite.NewStore(storePath)
}

// Execute runs the CLI and returns any command error.
func Execute() error {
	defer func() {
		if metadataStore != nil {
			metadataStore.Close() //nolint:errcheck
		}
	}()
	return rootCmd.Execute()
}
