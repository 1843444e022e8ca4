package vectordb

import "context"

// Store defines the interface for storing and searching document chunks by
// their embeddings.
type Store interface {
	// Upsert adds or replaces chunks. Chunks must carry their embeddings.
	Upsert(ctx context.Context, chunks []Chunk) error

	// Search returns chunks similar to the query vector, best first. Results
	// below params.ScoreThreshold are dropped and at most params.Limit are
	// returned.
	Search(ctx context.Context, queryVector []float32, params SearchParams) ([]SearchResult, error)

	// DeleteDocument removes every chunk belonging to the given document.
	DeleteDocument(ctx context.Context, documentID string) error

	// Persist saves the store's data to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the store's data from the given directory.
	Load(ctx context.Context, dir string) error

	// Count returns the total number of chunks in the store.
	Count() int
}
