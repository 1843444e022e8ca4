package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultFileName is the config file ragserve looks for in the working directory.
const DefaultFileName = ".ragserve.yml"

// EnvPrefix is the prefix for environment variable overrides, e.g.
// RAGSERVE_SERVER_PORT=9090 overrides server.port.
const EnvPrefix = "RAGSERVE_"

// Load reads configuration from the given file (or DefaultFileName when path is
// empty), overlays RAGSERVE_* environment variables and validates the result.
// A missing config file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFileName
	}

	k := koanf.New(".")

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envToKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envToKey maps RAGSERVE_CHUNKING_MAX_SIZE to chunking.max_size. Only the
// section prefix becomes a dot; compound field names keep their underscores.
func envToKey(key string) string {
	lower := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	for _, s := range []string{"chunking", "retrieval", "embedding", "generation", "server"} {
		if strings.HasPrefix(lower, s+"_") {
			return s + "." + strings.TrimPrefix(lower, s+"_")
		}
	}
	return lower
}

// Validate checks the configuration for values that would break the pipeline.
func (c *Config) Validate() error {
	if c.Provider != ProviderOpenAI && c.Provider != ProviderOllama {
		return fmt.Errorf("invalid provider %q (want openai or ollama)", c.Provider)
	}
	if c.EmbeddingProvider != ProviderOpenAI && c.EmbeddingProvider != ProviderOllama {
		return fmt.Errorf("invalid embedding provider %q (want openai or ollama)", c.EmbeddingProvider)
	}
	if c.Model == "" {
		return fmt.Errorf("model must be set")
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding model must be set")
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("vector dimension must be positive, got %d", c.VectorDimension)
	}
	if c.Chunking.MaxSize <= 0 {
		return fmt.Errorf("chunking max_size must be positive, got %d", c.Chunking.MaxSize)
	}
	if c.Chunking.Overlap < 0 {
		return fmt.Errorf("chunking overlap must not be negative, got %d", c.Chunking.Overlap)
	}
	if c.Chunking.Overlap >= c.Chunking.MaxSize {
		return fmt.Errorf("chunking overlap (%d) must be smaller than max_size (%d)",
			c.Chunking.Overlap, c.Chunking.MaxSize)
	}
	if c.Retrieval.MaxDocuments <= 0 {
		return fmt.Errorf("retrieval max_documents must be positive, got %d", c.Retrieval.MaxDocuments)
	}
	if c.Retrieval.SimilarityThreshold < 0 || c.Retrieval.SimilarityThreshold > 1 {
		return fmt.Errorf("retrieval similarity_threshold must be in [0, 1], got %g",
			c.Retrieval.SimilarityThreshold)
	}
	if c.Embedding.BatchSize <= 0 {
		return fmt.Errorf("embedding batch_size must be positive, got %d", c.Embedding.BatchSize)
	}
	if c.Embedding.CacheTTLDays <= 0 {
		return fmt.Errorf("embedding cache_ttl_days must be positive, got %d", c.Embedding.CacheTTLDays)
	}
	if c.Generate.MaxTokens <= 0 {
		return fmt.Errorf("generation max_tokens must be positive, got %d", c.Generate.MaxTokens)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must be set")
	}
	return nil
}

// Save writes the configuration to the given path as YAML.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultFileName
	}

	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
