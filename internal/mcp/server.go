package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/ragserve/internal/documents"
	"github.com/ziadkadry99/ragserve/internal/rag"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Engine is the subset of the RAG pipeline the MCP tools need.
type Engine interface {
	Query(ctx context.Context, req rag.QueryRequest) (*rag.QueryResult, error)
	Ingest(ctx context.Context, req rag.IngestRequest) (*rag.IngestResult, error)
	List(ctx context.Context, filter documents.ListFilter) ([]documents.Document, int, error)
}

// Server wraps an MCP server that exposes the document store to AI agents.
type Server struct {
	engine Engine
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server backed by the given engine.
func NewServer(engine Engine) *Server {
	s := &Server{engine: engine}

	s.mcp = server.NewMCPServer(
		"ragserve",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(queryDocumentsTool, s.handleQueryDocuments)
	s.mcp.AddTool(listDocumentsTool, s.handleListDocuments)
	s.mcp.AddTool(ingestDocumentTool, s.handleIngestDocument)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
