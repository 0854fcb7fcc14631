// Package file provides TOML-backed configuration for the vectra CLI.
// Configuration is stored at ~/.vectra/config.toml unless a path is
// given explicitly.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultProvider     = "ollama"
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultBatchSize    = 32
)

// StorageConfig selects and configures the metadata store backend.
type StorageConfig struct {
	// Backend is "sqlite" (default) or "postgres".
	Backend string `toml:"backend"`

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string `toml:"postgres_dsn"`
}

// Config holds all user-facing settings.
type Config struct {
	// Provider selects the embedding provider: "ollama" or "openai".
	Provider string `toml:"provider"`

	// Model is the embedding model name. Empty uses the provider default.
	Model string `toml:"model"`

	// Dimensions overrides the model's embedding dimension.
	Dimensions int `toml:"dimensions"`

	// BaseURL overrides the provider's API base URL.
	BaseURL string `toml:"base_url"`

	// APIKey authenticates with hosted providers. The OPENAI_API_KEY
	// environment variable takes precedence.
	APIKey string `toml:"api_key"`

	// ChunkSize is the chunk length in characters.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is the overlap between consecutive chunks.
	ChunkOverlap int `toml:"chunk_overlap"`

	// BatchSize is the number of chunks embedded per provider call.
	BatchSize int `toml:"batch_size"`

	// MemoryBudgetMB is the advisory memory budget for ingestion.
	MemoryBudgetMB int `toml:"memory_budget_mb"`

	// MemoryThreshold is the usage fraction that triggers a release pass.
	MemoryThreshold float64 `toml:"memory_threshold"`

	Storage StorageConfig `toml:"storage"`
}

// DefaultConfig returns a config with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Provider:     DefaultProvider,
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		BatchSize:    DefaultBatchSize,
		Storage:      StorageConfig{Backend: "sqlite"},
	}
}

// DefaultPath returns ~/.vectra/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".vectra", "config.toml"), nil
}

// Load reads configuration from path. A missing file yields the
// defaults; a present file is merged over them so omitted keys keep
// their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.APIKey = key
	}

	return cfg, nil
}

// Save writes the configuration to path, creating the directory as
// needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// Restricted permissions, the file may hold an API key.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
