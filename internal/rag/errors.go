package rag

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a document does not exist in the registry. Routes
// translate it to a 404; everything else is a 500.
var ErrNotFound = errors.New("document not found")

// IngestionError reports that ingestion could not store any usable chunk.
// Partial failures are not errors; they surface as a chunk_count lower than
// chunk_total on the ingest result.
type IngestionError struct {
	DocumentID string
	Failed     int
	Total      int
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion of %s failed: %d of %d chunks could not be embedded",
		e.DocumentID, e.Failed, e.Total)
}
