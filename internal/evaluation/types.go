package evaluation

import "time"

// Citations summarizes bracketed source references found in a response.
type Citations struct {
	Count   int  `json:"count"`
	Present bool `json:"present"`
}

// SourceRelevance aggregates the similarity scores of the retrieved sources.
type SourceRelevance struct {
	Mean float64 `json:"mean"`
}

// Metrics is the per-query evaluation record.
type Metrics struct {
	ID              string          `json:"id,omitempty"`
	QueryID         string          `json:"query_id"`
	Query           string          `json:"query,omitempty"`
	LatencyMS       float64         `json:"latency_ms"`
	TokenUsage      int             `json:"token_usage"`
	ResponseLength  int             `json:"response_length"`
	SourceCount     int             `json:"source_count"`
	Citations       Citations       `json:"citations"`
	SourceRelevance SourceRelevance `json:"source_relevance"`
	ConfidenceScore float64         `json:"confidence_score"`
	CreatedAt       time.Time       `json:"created_at,omitempty"`
}

// Feedback is one append-only user rating of a query response.
type Feedback struct {
	ID        string    `json:"id,omitempty"`
	QueryID   string    `json:"query_id"`
	Rating    int       `json:"rating"`
	Helpful   bool      `json:"helpful"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Stats aggregates evaluations for the stats endpoint.
type Stats struct {
	TotalQueries   int     `json:"total_queries"`
	MeanConfidence float64 `json:"mean_confidence"`
	MeanLatencyMS  float64 `json:"mean_latency_ms"`
	CitationRate   float64 `json:"citation_rate"`
	FeedbackCount  int     `json:"feedback_count"`
	MeanRating     float64 `json:"mean_rating"`
}
