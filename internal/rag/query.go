package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ziadkadry99/ragserve/internal/evaluation"
	"github.com/ziadkadry99/ragserve/internal/llm"
	"github.com/ziadkadry99/ragserve/internal/vectordb"
)

// QueryRequest is one retrieval-augmented question.
type QueryRequest struct {
	Query        string         `json:"query"`
	MaxDocuments int            `json:"max_documents,omitempty"`
	Filters      map[string]any `json:"filters,omitempty"`
}

// QueryResult is the answered query.
type QueryResult struct {
	QueryID    string             `json:"query_id"`
	Query      string             `json:"query"`
	Response   string             `json:"response"`
	Sources    []Source           `json:"sources"`
	Confidence float64            `json:"confidence"`
	TokenUsage int                `json:"token_usage"`
	Evaluation evaluation.Metrics `json:"evaluation"`
}

// retrieve embeds the query and searches the vector store.
func (e *Engine) retrieve(ctx context.Context, req QueryRequest) ([]Source, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("query is empty")
	}

	queryVectors, err := e.embedder.Embed(ctx, []string{req.Query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	limit := req.MaxDocuments
	if limit <= 0 {
		limit = e.cfg.Retrieval.MaxDocuments
	}

	results, err := e.vectors.Search(ctx, queryVectors[0], vectordb.SearchParams{
		Limit:          limit,
		ScoreThreshold: e.cfg.Retrieval.SimilarityThreshold,
		Filters:        vectordb.Filters(req.Filters),
	})
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}

	sources := make([]Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, Source{
			DocumentID: r.Chunk.Metadata.DocumentID,
			Title:      r.Chunk.Metadata.Title,
			ChunkIndex: r.Chunk.Metadata.ChunkIndex,
			Content:    r.Chunk.Content,
			Similarity: float64(r.Similarity),
		})
	}
	return sources, nil
}

func similarities(sources []Source) []float64 {
	out := make([]float64, len(sources))
	for i, s := range sources {
		out[i] = s.Similarity
	}
	return out
}

// Query answers a question grounded in the document store. When nothing
// scores above the similarity threshold it returns a fixed response without
// calling the model.
func (e *Engine) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	start := time.Now()
	queryID := uuid.NewString()

	sources, err := e.retrieve(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(sources) == 0 {
		metrics := e.evaluator.Evaluate(ctx, evaluation.Input{
			QueryID:  queryID,
			Query:    req.Query,
			Response: noAnswerResponse,
			Elapsed:  time.Since(start),
		})
		return &QueryResult{
			QueryID:    queryID,
			Query:      req.Query,
			Response:   noAnswerResponse,
			Sources:    []Source{},
			Confidence: 0,
			Evaluation: metrics,
		}, nil
	}

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model:       e.cfg.Model,
		Messages:    BuildPrompt(req.Query, sources),
		MaxTokens:   e.cfg.Generate.MaxTokens,
		Temperature: e.cfg.Generate.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generating response: %w", err)
	}

	tokens := resp.TotalTokens()
	if tokens == 0 {
		tokens = llm.EstimateTokens(e.cfg.Model, resp.Content)
	}

	metrics := e.evaluator.Evaluate(ctx, evaluation.Input{
		QueryID:      queryID,
		Query:        req.Query,
		Response:     resp.Content,
		Similarities: similarities(sources),
		TokenUsage:   tokens,
		Elapsed:      time.Since(start),
	})

	return &QueryResult{
		QueryID:    queryID,
		Query:      req.Query,
		Response:   resp.Content,
		Sources:    sources,
		Confidence: metrics.ConfidenceScore,
		TokenUsage: tokens,
		Evaluation: metrics,
	}, nil
}
