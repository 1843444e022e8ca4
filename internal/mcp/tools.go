package mcp

import "github.com/mark3labs/mcp-go/mcp"

// queryDocumentsTool defines the query_documents MCP tool.
var queryDocumentsTool = mcp.NewTool("query_documents",
	mcp.WithDescription("Ask a question answered from the ingested document store. Returns a grounded answer with cited sources."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language question"),
	),
	mcp.WithNumber("max_documents",
		mcp.Description("Maximum number of source documents to retrieve (default 5)"),
	),
	mcp.WithString("document_type",
		mcp.Description("Restrict retrieval to one document type"),
		mcp.Enum("text", "markdown", "html"),
	),
	mcp.WithString("tag",
		mcp.Description("Restrict retrieval to documents carrying this tag"),
	),
)

// listDocumentsTool defines the list_documents MCP tool.
var listDocumentsTool = mcp.NewTool("list_documents",
	mcp.WithDescription("List documents registered in the store, newest first."),
	mcp.WithString("document_type",
		mcp.Description("Filter by document type"),
		mcp.Enum("text", "markdown", "html"),
	),
	mcp.WithString("tag",
		mcp.Description("Filter by tag"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of documents to return (default 20)"),
	),
)

// ingestDocumentTool defines the ingest_document MCP tool.
var ingestDocumentTool = mcp.NewTool("ingest_document",
	mcp.WithDescription("Add a document to the store so later queries can retrieve it."),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description("Full document text"),
	),
	mcp.WithString("title",
		mcp.Description("Document title"),
	),
	mcp.WithString("document_type",
		mcp.Description("Document type (default text)"),
		mcp.Enum("text", "markdown", "html"),
	),
	mcp.WithString("tags",
		mcp.Description("Comma-separated tags"),
	),
)
