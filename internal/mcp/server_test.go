package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/ragserve/internal/documents"
	"github.com/ziadkadry99/ragserve/internal/rag"
)

type fakeEngine struct {
	queryResult  *rag.QueryResult
	queryErr     error
	ingestResult *rag.IngestResult
	docs         []documents.Document

	lastQuery  rag.QueryRequest
	lastIngest rag.IngestRequest
}

func (f *fakeEngine) Query(_ context.Context, req rag.QueryRequest) (*rag.QueryResult, error) {
	f.lastQuery = req
	return f.queryResult, f.queryErr
}

func (f *fakeEngine) Ingest(_ context.Context, req rag.IngestRequest) (*rag.IngestResult, error) {
	f.lastIngest = req
	return f.ingestResult, nil
}

func (f *fakeEngine) List(_ context.Context, _ documents.ListFilter) ([]documents.Document, int, error) {
	return f.docs, len(f.docs), nil
}

func extractText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestHandleQueryDocuments(t *testing.T) {
	engine := &fakeEngine{
		queryResult: &rag.QueryResult{
			Response:   "Grounded answer [1].",
			Confidence: 0.91,
			Sources: []rag.Source{
				{DocumentID: "d1", Title: "Runbook", Similarity: 0.91},
			},
		},
	}
	srv := NewServer(engine)
	ctx := context.Background()

	t.Run("basic query", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "how do we deploy"}

		result, err := srv.handleQueryDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := extractText(result)
		if !strings.Contains(text, "Grounded answer") || !strings.Contains(text, "Runbook") {
			t.Errorf("unexpected output: %s", text)
		}
	})

	t.Run("filters forwarded", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query":         "deploy",
			"document_type": "markdown",
			"tag":           "ops",
		}

		if _, err := srv.handleQueryDocuments(ctx, req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if engine.lastQuery.Filters["document_type"] != "markdown" {
			t.Errorf("filters = %v", engine.lastQuery.Filters)
		}
		tags, _ := engine.lastQuery.Filters["tags"].([]string)
		if len(tags) != 1 || tags[0] != "ops" {
			t.Errorf("tag filter = %v", engine.lastQuery.Filters["tags"])
		}
	})

	t.Run("missing query", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleQueryDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing query")
		}
	})

	t.Run("engine failure", func(t *testing.T) {
		failing := NewServer(&fakeEngine{queryErr: errors.New("provider down")})
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "anything"}

		result, err := failing.handleQueryDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected tool error when the engine fails")
		}
	})
}

func TestHandleListDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("with documents", func(t *testing.T) {
		srv := NewServer(&fakeEngine{docs: []documents.Document{
			{ID: "d1", Title: "Runbook", DocumentType: "markdown", ChunkCount: 3, ChunkTotal: 3, Tags: []string{"ops"}},
		}})
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleListDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := extractText(result)
		if !strings.Contains(text, "Runbook") || !strings.Contains(text, "ops") {
			t.Errorf("unexpected output: %s", text)
		}
	})

	t.Run("empty store", func(t *testing.T) {
		srv := NewServer(&fakeEngine{})
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleListDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Error("empty store should not be an error")
		}
		if !strings.Contains(extractText(result), "No documents") {
			t.Errorf("unexpected output: %s", extractText(result))
		}
	})
}

func TestHandleIngestDocument(t *testing.T) {
	engine := &fakeEngine{
		ingestResult: &rag.IngestResult{DocumentID: "d9", ChunkCount: 2, ChunkTotal: 2},
	}
	srv := NewServer(engine)
	ctx := context.Background()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"content": "Some document body.",
		"title":   "Notes",
		"tags":    "ops, runbooks",
	}

	result, err := srv.handleIngestDocument(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}
	if !strings.Contains(extractText(result), "d9") {
		t.Errorf("unexpected output: %s", extractText(result))
	}

	if engine.lastIngest.CreatedBy != "mcp" || len(engine.lastIngest.Tags) != 2 {
		t.Errorf("ingest request = %+v", engine.lastIngest)
	}

	t.Run("missing content", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleIngestDocument(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing content")
		}
	})
}
