package vectordb

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	chromem "github.com/philippgille/chromem-go"
)

const collectionName = "documents"

// ChromemStore implements Store using chromem-go.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// NewChromemStore creates a new in-memory ChromemStore. embedFunc is only
// invoked for chunks added without an embedding; the normal ingest path
// always supplies vectors.
func NewChromemStore(embedFunc chromem.EmbeddingFunc) (*ChromemStore, error) {
	db := chromem.NewDB()

	col, err := db.GetOrCreateCollection(collectionName, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		embedFunc:  embedFunc,
	}, nil
}

func (s *ChromemStore) Upsert(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        chunk.ID,
			Content:   chunk.Content,
			Embedding: chunk.Embedding,
			Metadata:  metadataToMap(chunk.Metadata),
		}
	}

	return s.collection.AddDocuments(ctx, docs, 1)
}

func (s *ChromemStore) Search(ctx context.Context, queryVector []float32, params SearchParams) ([]SearchResult, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}

	// Scalar filters map directly onto chromem's exact-match where clause;
	// collection-valued filters are applied after the query.
	where, lists := splitFilters(params.Filters)

	// Fetch everything that matches the where clause so the threshold and
	// tag filters see the full candidate set.
	results, err := s.collection.QueryEmbedding(ctx, queryVector, count, where, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	var out []SearchResult
	for _, r := range results {
		if float64(r.Similarity) < params.ScoreThreshold {
			continue
		}
		meta := mapToMetadata(r.Metadata)
		if !matchesLists(r.Metadata, meta.Tags, lists) {
			continue
		}
		out = append(out, SearchResult{
			Chunk: Chunk{
				ID:        r.ID,
				Content:   r.Content,
				Embedding: r.Embedding,
				Metadata:  meta,
			},
			Similarity: r.Similarity,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (s *ChromemStore) DeleteDocument(ctx context.Context, documentID string) error {
	if s.collection.Count() == 0 {
		return nil
	}
	where := map[string]string{"document_id": documentID}
	return s.collection.Delete(ctx, where, nil)
}

func (s *ChromemStore) Persist(_ context.Context, dir string) error {
	return s.db.ExportToFile(dir+"/chromem.gob.gz", true, "")
}

func (s *ChromemStore) Load(_ context.Context, dir string) error {
	if err := s.db.ImportFromFile(dir+"/chromem.gob.gz", ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

// splitFilters partitions Filters into chromem's scalar where clause and
// per-field value lists that need post-filtering. Filters decoded from JSON
// carry lists as []any, so elements are coerced to strings.
func splitFilters(filters Filters) (map[string]string, map[string][]string) {
	var where map[string]string
	var lists map[string][]string

	addList := func(key string, values []string) {
		if len(values) == 0 {
			return
		}
		if lists == nil {
			lists = make(map[string][]string)
		}
		lists[key] = append(lists[key], values...)
	}

	for key, value := range filters {
		switch v := value.(type) {
		case []string:
			addList(key, v)
		case []any:
			values := make([]string, len(v))
			for i, el := range v {
				values[i] = fmt.Sprintf("%v", el)
			}
			addList(key, values)
		case string:
			if where == nil {
				where = make(map[string]string)
			}
			where[key] = v
		default:
			if where == nil {
				where = make(map[string]string)
			}
			where[key] = fmt.Sprintf("%v", v)
		}
	}
	return where, lists
}

// matchesLists reports whether a chunk satisfies every list-valued filter:
// the chunk's value for the named field must appear in that field's list.
// For tags any one of the chunk's tags may match.
func matchesLists(meta map[string]string, chunkTags []string, lists map[string][]string) bool {
	for field, wanted := range lists {
		if field == "tags" {
			if !anyTagMatches(chunkTags, wanted) {
				return false
			}
			continue
		}
		if !containsString(wanted, meta[field]) {
			return false
		}
	}
	return true
}

func anyTagMatches(chunkTags, wanted []string) bool {
	for _, tag := range chunkTags {
		for _, w := range wanted {
			if tag == w {
				return true
			}
		}
	}
	return false
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// metadataToMap converts ChunkMetadata to a flat map[string]string for chromem.
func metadataToMap(m ChunkMetadata) map[string]string {
	return map[string]string{
		"document_id":    m.DocumentID,
		"title":          m.Title,
		"document_type":  m.DocumentType,
		"source":         m.Source,
		"tags":           strings.Join(m.Tags, ","),
		"created_by":     m.CreatedBy,
		"created_at":     m.CreatedAt.Format(time.RFC3339),
		"chunk_index":    strconv.Itoa(m.ChunkIndex),
		"chunk_total":    strconv.Itoa(m.ChunkTotal),
		"content_length": strconv.Itoa(m.ContentLength),
		"embedded_at":    m.EmbeddedAt.Format(time.RFC3339),
	}
}

// mapToMetadata converts a flat map[string]string back to ChunkMetadata.
func mapToMetadata(m map[string]string) ChunkMetadata {
	chunkIndex, _ := strconv.Atoi(m["chunk_index"])
	chunkTotal, _ := strconv.Atoi(m["chunk_total"])
	contentLength, _ := strconv.Atoi(m["content_length"])
	createdAt, _ := time.Parse(time.RFC3339, m["created_at"])
	embeddedAt, _ := time.Parse(time.RFC3339, m["embedded_at"])

	var tags []string
	if m["tags"] != "" {
		tags = strings.Split(m["tags"], ",")
	}

	return ChunkMetadata{
		DocumentID:    m["document_id"],
		Title:         m["title"],
		DocumentType:  m["document_type"],
		Source:        m["source"],
		Tags:          tags,
		CreatedBy:     m["created_by"],
		CreatedAt:     createdAt,
		ChunkIndex:    chunkIndex,
		ChunkTotal:    chunkTotal,
		ContentLength: contentLength,
		EmbeddedAt:    embeddedAt,
	}
}
