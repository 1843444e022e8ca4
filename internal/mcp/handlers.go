package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/ragserve/internal/documents"
	"github.com/ziadkadry99/ragserve/internal/rag"
)

// handleQueryDocuments answers a question grounded in the document store.
func (s *Server) handleQueryDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	req := rag.QueryRequest{
		Query:        query,
		MaxDocuments: request.GetInt("max_documents", 0),
	}

	filters := map[string]any{}
	if docType := request.GetString("document_type", ""); docType != "" {
		filters["document_type"] = docType
	}
	if tag := request.GetString("tag", ""); tag != "" {
		filters["tags"] = []string{tag}
	}
	if len(filters) > 0 {
		req.Filters = filters
	}

	result, err := s.engine.Query(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatQueryResult(result)), nil
}

// handleListDocuments lists registered documents.
func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := documents.ListFilter{
		DocumentType: request.GetString("document_type", ""),
		Tag:          request.GetString("tag", ""),
		Limit:        request.GetInt("limit", 20),
	}

	docs, total, err := s.engine.List(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing documents failed: %v", err)), nil
	}
	if total == 0 {
		return mcp.NewToolResultText("No documents in the store yet. Use ingest_document or `ragserve ingest` to add some."), nil
	}

	return mcp.NewToolResultText(formatDocumentList(docs, total)), nil
}

// handleIngestDocument adds one document to the store.
func (s *Server) handleIngestDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: content"), nil
	}

	req := rag.IngestRequest{
		Content:      content,
		Title:        request.GetString("title", ""),
		DocumentType: request.GetString("document_type", ""),
		CreatedBy:    "mcp",
	}
	if tags := request.GetString("tags", ""); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				req.Tags = append(req.Tags, tag)
			}
		}
	}

	result, err := s.engine.Ingest(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ingestion failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Ingested document %s (%d of %d chunks indexed).",
		result.DocumentID, result.ChunkCount, result.ChunkTotal,
	)), nil
}

// formatQueryResult renders the answer plus its sources in a text format
// suited to AI agent consumption.
func formatQueryResult(result *rag.QueryResult) string {
	var sb strings.Builder
	sb.WriteString(result.Response)
	sb.WriteString("\n")

	if len(result.Sources) > 0 {
		sb.WriteString(fmt.Sprintf("\nConfidence: %.0f%%\nSources:\n", result.Confidence*100))
		for i, src := range result.Sources {
			title := src.Title
			if title == "" {
				title = src.DocumentID
			}
			sb.WriteString(fmt.Sprintf("[%d] %s (similarity %.1f%%)\n", i+1, title, src.Similarity*100))
		}
	}

	return sb.String()
}

// formatDocumentList renders a document listing.
func formatDocumentList(docs []documents.Document, total int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d document(s):\n", total))

	for _, doc := range docs {
		title := doc.Title
		if title == "" {
			title = "(untitled)"
		}
		sb.WriteString(fmt.Sprintf("\n- %s\n  id: %s\n  type: %s\n  chunks: %d/%d\n",
			title, doc.ID, doc.DocumentType, doc.ChunkCount, doc.ChunkTotal))
		if len(doc.Tags) > 0 {
			sb.WriteString(fmt.Sprintf("  tags: %s\n", strings.Join(doc.Tags, ", ")))
		}
	}

	return sb.String()
}
