package rag

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ziadkadry99/ragserve/internal/documents"
	"github.com/ziadkadry99/ragserve/internal/embeddings"
	"github.com/ziadkadry99/ragserve/internal/vectordb"
)

// IngestRequest describes a document to ingest.
type IngestRequest struct {
	Content      string   `json:"content"`
	Title        string   `json:"title,omitempty"`
	DocumentType string   `json:"document_type,omitempty"`
	Source       string   `json:"source,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	CreatedBy    string   `json:"created_by,omitempty"`
}

// IngestResult reports what was stored.
type IngestResult struct {
	DocumentID   string `json:"document_id"`
	ChunkCount   int    `json:"chunk_count"`
	ChunkTotal   int    `json:"chunk_total"`
	FailedChunks int    `json:"failed_chunks,omitempty"`
	BlobURL      string `json:"blob_url,omitempty"`
}

// Ingest archives, chunks, embeds and indexes one document. Chunks whose
// embedding fails are skipped; only when every chunk fails does ingestion
// error out, rolling back the blob archive.
func (e *Engine) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if req.Content == "" {
		return nil, fmt.Errorf("document content is empty")
	}

	documentID := uuid.NewString()
	now := time.Now().UTC()

	title := req.Title
	content := req.Content
	docType := req.DocumentType
	if docType == "" {
		docType = "text"
	}
	if docType == "markdown" {
		headingTitle, plain := normalizeMarkdown(content)
		content = plain
		if title == "" {
			title = headingTitle
		}
	}

	createdBy := req.CreatedBy
	if createdBy == "" {
		createdBy = "anonymous"
	}

	// Archive the raw body before anything can fail partway.
	var blobURL string
	if e.blobs != nil {
		url, err := e.blobs.Put(ctx, documentContainer, documentID+"/body",
			[]byte(req.Content), map[string]string{"title": title, "document_type": docType})
		if err != nil {
			return nil, fmt.Errorf("archiving document: %w", err)
		}
		blobURL = url
	}

	chunks := e.chunker.Chunk(content)
	if len(chunks) == 0 {
		e.rollbackBlob(ctx, documentID)
		return nil, fmt.Errorf("document has no chunkable content")
	}

	vectors, errs := e.embedder.EmbedEach(ctx, chunks)

	var stored []vectordb.Chunk
	var chunkKeys []string
	failed := 0
	for i, chunk := range chunks {
		if errs[i] != nil {
			failed++
			log.Printf("rag: embedding chunk %d of %s: %v", i, documentID, errs[i])
			continue
		}
		stored = append(stored, vectordb.Chunk{
			ID:        fmt.Sprintf("%s_%d", documentID, i),
			Content:   chunk,
			Embedding: vectors[i],
			Metadata: vectordb.ChunkMetadata{
				DocumentID:    documentID,
				Title:         title,
				DocumentType:  docType,
				Source:        req.Source,
				Tags:          req.Tags,
				CreatedBy:     createdBy,
				CreatedAt:     now,
				ChunkIndex:    i,
				ChunkTotal:    len(chunks),
				ContentLength: len(chunk),
				EmbeddedAt:    now,
			},
		})
		chunkKeys = append(chunkKeys, embeddings.CacheKey(chunk))
	}

	if len(stored) == 0 {
		e.rollbackBlob(ctx, documentID)
		return nil, &IngestionError{DocumentID: documentID, Failed: failed, Total: len(chunks)}
	}

	if err := e.vectors.Upsert(ctx, stored); err != nil {
		e.rollbackBlob(ctx, documentID)
		return nil, fmt.Errorf("indexing chunks: %w", err)
	}

	err := e.docs.Insert(ctx, documents.Document{
		ID:           documentID,
		Title:        title,
		DocumentType: docType,
		Source:       req.Source,
		Tags:         req.Tags,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		ChunkCount:   len(stored),
		ChunkTotal:   len(chunks),
		BlobURL:      blobURL,
		ChunkKeys:    chunkKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("registering document: %w", err)
	}

	return &IngestResult{
		DocumentID:   documentID,
		ChunkCount:   len(stored),
		ChunkTotal:   len(chunks),
		FailedChunks: failed,
		BlobURL:      blobURL,
	}, nil
}

func (e *Engine) rollbackBlob(ctx context.Context, documentID string) {
	if e.blobs == nil {
		return
	}
	if err := e.blobs.Delete(ctx, documentContainer, documentID+"/body"); err != nil {
		log.Printf("rag: rolling back blob for %s: %v", documentID, err)
	}
}
