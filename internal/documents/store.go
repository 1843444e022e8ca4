package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/ragserve/internal/db"
)

// Store persists the document registry.
type Store struct {
	db *db.DB
}

// NewStore creates a new document registry store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Insert adds a registry row for a newly ingested document.
func (s *Store) Insert(ctx context.Context, doc Document) error {
	tags, err := json.Marshal(orEmpty(doc.Tags))
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}
	chunkKeys, err := json.Marshal(orEmpty(doc.ChunkKeys))
	if err != nil {
		return fmt.Errorf("marshalling chunk keys: %w", err)
	}

	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (document_id, title, document_type, source, tags, created_by, created_at, chunk_count, chunk_total, blob_url, chunk_keys)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID,
		doc.Title,
		doc.DocumentType,
		doc.Source,
		string(tags),
		doc.CreatedBy,
		createdAt.Format(time.RFC3339),
		doc.ChunkCount,
		doc.ChunkTotal,
		doc.BlobURL,
		string(chunkKeys),
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// Get returns the document with the given ID, or nil when absent.
func (s *Store) Get(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT document_id, title, document_type, source, tags, created_by, created_at, chunk_count, chunk_total, blob_url, chunk_keys
		FROM documents WHERE document_id = ?`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return doc, err
}

// List returns documents matching the filter, newest first, plus the total
// match count before paging.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Document, int, error) {
	var conditions []string
	var args []interface{}

	if filter.DocumentType != "" {
		conditions = append(conditions, "document_type = ?")
		args = append(args, filter.DocumentType)
	}
	if filter.CreatedBy != "" {
		conditions = append(conditions, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}
	if filter.Tag != "" {
		// Tags are stored as a JSON array of strings.
		conditions = append(conditions, `tags LIKE '%"' || ? || '"%'`)
		args = append(args, filter.Tag)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting documents: %w", err)
	}

	query := `SELECT document_id, title, document_type, source, tags, created_by, created_at, chunk_count, chunk_total, blob_url, chunk_keys
		FROM documents` + where + " ORDER BY created_at DESC, document_id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 {
		// SQLite only accepts OFFSET after a LIMIT; -1 means unbounded.
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		docs = append(docs, *doc)
	}
	return docs, total, rows.Err()
}

// Delete removes a registry row. The second return value reports whether a
// row existed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE document_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting document: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(sc scanner) (*Document, error) {
	var doc Document
	var tags, chunkKeys, createdAt string

	err := sc.Scan(&doc.ID, &doc.Title, &doc.DocumentType, &doc.Source, &tags,
		&doc.CreatedBy, &createdAt, &doc.ChunkCount, &doc.ChunkTotal,
		&doc.BlobURL, &chunkKeys)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &doc.Tags); err != nil {
		return nil, fmt.Errorf("parsing tags for %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal([]byte(chunkKeys), &doc.ChunkKeys); err != nil {
		return nil, fmt.Errorf("parsing chunk keys for %s: %w", doc.ID, err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		doc.CreatedAt = t
	}
	return &doc, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
