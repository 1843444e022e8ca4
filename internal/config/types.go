package config

// ProviderType identifies an embedding or completion provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level ragserve configuration, corresponding to .ragserve.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	VectorDimension   int          `yaml:"vector_dimension" koanf:"vector_dimension"`

	// DataDir holds the SQLite database, the persisted vector store and the
	// blob store root.
	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	Chunking  ChunkingConfig  `yaml:"chunking" koanf:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval" koanf:"retrieval"`
	Embedding EmbeddingConfig `yaml:"embedding" koanf:"embedding"`
	Generate  GenerateConfig  `yaml:"generation" koanf:"generation"`
	Server    ServerConfig    `yaml:"server" koanf:"server"`

	// Include and Exclude are glob patterns applied by the CLI ingest command
	// when walking a directory of documents.
	Include []string `yaml:"include" koanf:"include"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`
}

// ChunkingConfig controls how document text is split before embedding.
type ChunkingConfig struct {
	MaxSize int `yaml:"max_size" koanf:"max_size"`
	Overlap int `yaml:"overlap" koanf:"overlap"`
}

// RetrievalConfig controls vector search behavior on the query path.
type RetrievalConfig struct {
	MaxDocuments        int     `yaml:"max_documents" koanf:"max_documents"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" koanf:"similarity_threshold"`
}

// EmbeddingConfig controls embedding batching and the embedding cache.
type EmbeddingConfig struct {
	BatchSize    int  `yaml:"batch_size" koanf:"batch_size"`
	CacheEnabled bool `yaml:"cache_enabled" koanf:"cache_enabled"`
	CacheTTLDays int  `yaml:"cache_ttl_days" koanf:"cache_ttl_days"`
}

// GenerateConfig controls the completion request sent to the LLM.
type GenerateConfig struct {
	Temperature  float64 `yaml:"temperature" koanf:"temperature"`
	MaxTokens    int     `yaml:"max_tokens" koanf:"max_tokens"`
	RateLimitRPM int     `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
