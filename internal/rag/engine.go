package rag

import (
	"context"
	"fmt"
	"log"

	"github.com/ziadkadry99/ragserve/internal/blobstore"
	"github.com/ziadkadry99/ragserve/internal/cache"
	"github.com/ziadkadry99/ragserve/internal/chunker"
	"github.com/ziadkadry99/ragserve/internal/config"
	"github.com/ziadkadry99/ragserve/internal/documents"
	"github.com/ziadkadry99/ragserve/internal/embeddings"
	"github.com/ziadkadry99/ragserve/internal/evaluation"
	"github.com/ziadkadry99/ragserve/internal/llm"
	"github.com/ziadkadry99/ragserve/internal/vectordb"
)

const documentContainer = "documents"

// Source is one retrieved chunk returned alongside an answer.
type Source struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title,omitempty"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// Engine wires retrieval, generation and evaluation into the pipeline
// behind every ingest and query operation.
type Engine struct {
	cfg       *config.Config
	chunker   *chunker.Chunker
	embedder  *embeddings.CachedEmbedder
	provider  llm.Provider
	vectors   vectordb.Store
	docs      *documents.Store
	blobs     blobstore.Store
	cache     cache.Store
	evaluator *evaluation.Evaluator
}

// Options collects the Engine's collaborators.
type Options struct {
	Config    *config.Config
	Embedder  *embeddings.CachedEmbedder
	Provider  llm.Provider
	Vectors   vectordb.Store
	Documents *documents.Store
	Blobs     blobstore.Store
	Cache     cache.Store
	Evaluator *evaluation.Evaluator
}

// New creates an Engine.
func New(opts Options) (*Engine, error) {
	ch, err := chunker.New(opts.Config.Chunking.MaxSize, opts.Config.Chunking.Overlap)
	if err != nil {
		return nil, fmt.Errorf("configuring chunker: %w", err)
	}
	return &Engine{
		cfg:       opts.Config,
		chunker:   ch,
		embedder:  opts.Embedder,
		provider:  opts.Provider,
		vectors:   opts.Vectors,
		docs:      opts.Documents,
		blobs:     opts.Blobs,
		cache:     opts.Cache,
		evaluator: opts.Evaluator,
	}, nil
}

// List returns registered documents, newest first, enriched best-effort with
// blob size and modification time.
func (e *Engine) List(ctx context.Context, filter documents.ListFilter) ([]documents.Document, int, error) {
	docs, total, err := e.docs.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if e.blobs != nil {
		for i := range docs {
			props, err := e.blobs.GetProperties(ctx, documentContainer, docs[i].ID+"/body")
			if err != nil {
				continue
			}
			docs[i].BlobSize = props.Size
			modified := props.LastModified
			docs[i].BlobModified = &modified
		}
	}
	return docs, total, nil
}

// Delete removes a document everywhere: vector store, registry, embedding
// cache and blob archive. Returns ErrNotFound when the registry has no such
// document. Cache and blob cleanup are best-effort.
func (e *Engine) Delete(ctx context.Context, documentID string) error {
	doc, err := e.docs.Get(ctx, documentID)
	if err != nil {
		return fmt.Errorf("looking up document: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, documentID)
	}

	if err := e.vectors.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	if _, err := e.docs.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("deleting registry row: %w", err)
	}

	if e.cache != nil && len(doc.ChunkKeys) > 0 {
		if err := e.cache.Delete(ctx, doc.ChunkKeys...); err != nil {
			log.Printf("rag: purging cache for %s: %v", documentID, err)
		}
	}
	if e.blobs != nil {
		if err := e.blobs.Delete(ctx, documentContainer, documentID+"/body"); err != nil {
			log.Printf("rag: deleting blob for %s: %v", documentID, err)
		}
	}
	return nil
}

// Persist saves the vector store to the configured data directory.
func (e *Engine) Persist(ctx context.Context) error {
	return e.vectors.Persist(ctx, e.cfg.DataDir)
}
