package vectordb

import "time"

// Chunk is one embedded span of a document, the unit stored and searched.
type Chunk struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  ChunkMetadata
}

// ChunkMetadata holds structured information about a chunk and the document
// it came from.
type ChunkMetadata struct {
	DocumentID    string
	Title         string
	DocumentType  string
	Source        string
	Tags          []string
	CreatedBy     string
	CreatedAt     time.Time
	ChunkIndex    int
	ChunkTotal    int
	ContentLength int
	EmbeddedAt    time.Time
}

// Filters narrows search results by metadata. Scalar values must match
// exactly; a []string value matches when the chunk shares at least one tag
// with it. All entries must hold for a chunk to pass.
type Filters map[string]any

// SearchParams controls a vector search.
type SearchParams struct {
	Limit          int
	ScoreThreshold float64
	Filters        Filters
}

// SearchResult pairs a chunk with its cosine similarity to the query.
type SearchResult struct {
	Chunk      Chunk
	Similarity float32
}
