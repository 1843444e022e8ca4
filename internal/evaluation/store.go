package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ziadkadry99/ragserve/internal/db"
)

// Store persists evaluation metrics and feedback. Both tables are
// append-only; records are never updated.
type Store struct {
	db *db.DB
}

// NewStore creates a new evaluation store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// InsertMetrics appends one metrics record.
func (s *Store) InsertMetrics(ctx context.Context, m Metrics) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	present := 0
	if m.Citations.Present {
		present = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluations (id, query_id, query, latency_ms, token_usage, response_length, source_count, citation_count, citations_present, source_relevance_mean, confidence_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.QueryID, m.Query, m.LatencyMS, m.TokenUsage, m.ResponseLength,
		m.SourceCount, m.Citations.Count, present, m.SourceRelevance.Mean,
		m.ConfidenceScore, createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting metrics: %w", err)
	}
	return nil
}

// ListMetrics returns metrics for one query, oldest first.
func (s *Store) ListMetrics(ctx context.Context, queryID string) ([]Metrics, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query_id, query, latency_ms, token_usage, response_length, source_count, citation_count, citations_present, source_relevance_mean, confidence_score, created_at
		FROM evaluations WHERE query_id = ? ORDER BY created_at`, queryID)
	if err != nil {
		return nil, fmt.Errorf("listing metrics: %w", err)
	}
	defer rows.Close()

	var results []Metrics
	for rows.Next() {
		var m Metrics
		var present int
		var createdAt string
		err := rows.Scan(&m.ID, &m.QueryID, &m.Query, &m.LatencyMS, &m.TokenUsage,
			&m.ResponseLength, &m.SourceCount, &m.Citations.Count, &present,
			&m.SourceRelevance.Mean, &m.ConfidenceScore, &createdAt)
		if err != nil {
			return nil, err
		}
		m.Citations.Present = present != 0
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			m.CreatedAt = t
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// InsertFeedback appends one feedback record. Multiple records per query_id
// are expected; feedback is never overwritten.
func (s *Store) InsertFeedback(ctx context.Context, f Feedback) error {
	if f.QueryID == "" {
		return fmt.Errorf("feedback requires a query_id")
	}
	if f.Rating < 1 || f.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", f.Rating)
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	createdAt := f.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	helpful := 0
	if f.Helpful {
		helpful = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, query_id, rating, helpful, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, f.QueryID, f.Rating, helpful, f.Comment, createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting feedback: %w", err)
	}
	return nil
}

// ListFeedback returns all feedback for one query, oldest first.
func (s *Store) ListFeedback(ctx context.Context, queryID string) ([]Feedback, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query_id, rating, helpful, comment, created_at
		FROM feedback WHERE query_id = ? ORDER BY created_at`, queryID)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	defer rows.Close()

	var results []Feedback
	for rows.Next() {
		var f Feedback
		var helpful int
		var createdAt string
		if err := rows.Scan(&f.ID, &f.QueryID, &f.Rating, &helpful, &f.Comment, &createdAt); err != nil {
			return nil, err
		}
		f.Helpful = helpful != 0
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			f.CreatedAt = t
		}
		results = append(results, f)
	}
	return results, rows.Err()
}

// Stats aggregates all evaluations and feedback.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(confidence_score), 0),
		       COALESCE(AVG(latency_ms), 0),
		       COALESCE(AVG(citations_present), 0)
		FROM evaluations`).Scan(
		&stats.TotalQueries, &stats.MeanConfidence, &stats.MeanLatencyMS, &stats.CitationRate)
	if err != nil {
		return nil, fmt.Errorf("aggregating evaluations: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM feedback`).Scan(
		&stats.FeedbackCount, &stats.MeanRating)
	if err != nil {
		return nil, fmt.Errorf("aggregating feedback: %w", err)
	}

	return stats, nil
}
