package documents

import "time"

// Document is one registry row describing an ingested document.
type Document struct {
	ID           string    `json:"document_id"`
	Title        string    `json:"title"`
	DocumentType string    `json:"document_type"`
	Source       string    `json:"source"`
	Tags         []string  `json:"tags"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`

	// ChunkCount is how many chunks were embedded and stored; ChunkTotal is
	// how many the chunker produced. They differ when some chunks failed to
	// embed.
	ChunkCount int `json:"chunk_count"`
	ChunkTotal int `json:"chunk_total"`

	BlobURL string `json:"blob_url,omitempty"`

	// ChunkKeys are the embedding cache keys for this document's chunks,
	// recorded so a delete can purge the cache without re-reading content.
	ChunkKeys []string `json:"-"`

	// Blob enrichment, filled in best-effort on list.
	BlobSize     int64      `json:"blob_size,omitempty"`
	BlobModified *time.Time `json:"blob_modified,omitempty"`
}

// ListFilter narrows and pages a document listing.
type ListFilter struct {
	DocumentType string
	Tag          string
	CreatedBy    string
	Limit        int
	Offset       int
}
