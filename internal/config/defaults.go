package config

// defaultEmbeddingModels maps each provider to its default embedding model
// and vector dimension.
var defaultEmbeddingModels = map[ProviderType]struct {
	Model     string
	Dimension int
}{
	ProviderOpenAI: {Model: "text-embedding-3-small", Dimension: 1536},
	ProviderOllama: {Model: "nomic-embed-text", Dimension: 768},
}

// DefaultExcludes are glob patterns skipped by the CLI ingest walk by default.
var DefaultExcludes = []string{
	".git/**",
	"node_modules/**",
	"vendor/**",
	"*.lock",
	"*.bin",
	"*.png",
	"*.jpg",
	"*.pdf",
}

// DefaultConfig returns a Config with the stock defaults: OpenAI providers,
// 1000-character chunks with 200 characters of overlap, top-5 retrieval at a
// 0.7 similarity floor and a 7-day embedding cache.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             "gpt-4o-mini",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		VectorDimension:   1536,
		DataDir:           ".ragserve",
		Chunking: ChunkingConfig{
			MaxSize: 1000,
			Overlap: 200,
		},
		Retrieval: RetrievalConfig{
			MaxDocuments:        5,
			SimilarityThreshold: 0.7,
		},
		Embedding: EmbeddingConfig{
			BatchSize:    5,
			CacheEnabled: true,
			CacheTTLDays: 7,
		},
		Generate: GenerateConfig{
			Temperature:  0,
			MaxTokens:    500,
			RateLimitRPM: 60,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Include: []string{"**/*.txt", "**/*.md"},
		Exclude: DefaultExcludes,
	}
}

// DefaultEmbeddingModel returns the stock embedding model and dimension for
// the given provider. Falls back to the OpenAI defaults.
func DefaultEmbeddingModel(provider ProviderType) (string, int) {
	if d, ok := defaultEmbeddingModels[provider]; ok {
		return d.Model, d.Dimension
	}
	d := defaultEmbeddingModels[ProviderOpenAI]
	return d.Model, d.Dimension
}
