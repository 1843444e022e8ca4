package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ziadkadry99/ragserve/internal/auth"
	"github.com/ziadkadry99/ragserve/internal/blobstore"
	"github.com/ziadkadry99/ragserve/internal/cache"
	"github.com/ziadkadry99/ragserve/internal/config"
	"github.com/ziadkadry99/ragserve/internal/db"
	"github.com/ziadkadry99/ragserve/internal/documents"
	"github.com/ziadkadry99/ragserve/internal/embeddings"
	"github.com/ziadkadry99/ragserve/internal/evaluation"
	"github.com/ziadkadry99/ragserve/internal/llm"
	"github.com/ziadkadry99/ragserve/internal/rag"
	"github.com/ziadkadry99/ragserve/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `ragserve init` to create a config file", err)
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	model := cfg.EmbeddingModel
	dimension := cfg.VectorDimension
	if model == "" {
		model, dimension = config.DefaultEmbeddingModel(provider)
	}

	switch provider {
	case config.ProviderOpenAI:
		apiKey := auth.GetAPIKey("openai")
		if apiKey == "" {
			return nil, fmt.Errorf("no OpenAI API key: set OPENAI_API_KEY or run `ragserve auth openai`")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, model, dimension), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(model, dimension, os.Getenv("OLLAMA_HOST")), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", provider)
	}
}

// app bundles the wired pipeline shared by the serve, mcp, ingest and query
// commands.
type app struct {
	cfg       *config.Config
	database  *db.DB
	engine    *rag.Engine
	vectors   *vectordb.ChromemStore
	evalStore *evaluation.Store
	tokens    *auth.TokenStore
}

// buildApp wires the full pipeline from the configuration: SQLite database,
// embedding cache, vector store, blob archive, LLM provider and evaluator.
// The vector store is loaded from the data directory when a snapshot exists.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	database, err := db.Open(filepath.Join(cfg.DataDir, "ragserve.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var cacheStore cache.Store
	if cfg.Embedding.CacheEnabled {
		cacheStore = cache.NewSQLiteStore(database)
	}

	baseEmbedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		database.Close()
		return nil, err
	}
	ttl := time.Duration(cfg.Embedding.CacheTTLDays) * 24 * time.Hour
	embedder := embeddings.NewCachedEmbedder(baseEmbedder, cacheStore, ttl, cfg.Embedding.BatchSize)

	vectors, err := vectordb.NewChromemStore(embeddings.ToChromemFunc(embedder))
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("creating vector store: %w", err)
	}
	if err := vectors.Load(ctx, cfg.DataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load vector store from %s: %v\n", cfg.DataDir, err)
	}

	blobs, err := blobstore.NewFilesystemStore(filepath.Join(cfg.DataDir, "blobs"))
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("creating blob store: %w", err)
	}

	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	if cfg.Generate.RateLimitRPM > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.Generate.RateLimitRPM)
	}

	evalStore := evaluation.NewStore(database)

	engine, err := rag.New(rag.Options{
		Config:    cfg,
		Embedder:  embedder,
		Provider:  provider,
		Vectors:   vectors,
		Documents: documents.NewStore(database),
		Blobs:     blobs,
		Cache:     cacheStore,
		Evaluator: evaluation.NewEvaluator(evalStore, blobs),
	})
	if err != nil {
		database.Close()
		return nil, err
	}

	return &app{
		cfg:       cfg,
		database:  database,
		engine:    engine,
		vectors:   vectors,
		evalStore: evalStore,
		tokens:    auth.NewTokenStore(database),
	}, nil
}

// Close persists the vector store and closes the database.
func (a *app) Close(ctx context.Context) {
	if err := a.engine.Persist(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: persisting vector store: %v\n", err)
	}
	a.database.Close()
}
