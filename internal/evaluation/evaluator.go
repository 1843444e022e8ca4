package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ziadkadry99/ragserve/internal/blobstore"
)

const evaluationContainer = "evaluation-logs"

// Input carries everything the evaluator needs about one answered query.
type Input struct {
	QueryID      string
	Query        string
	Response     string
	Similarities []float64
	TokenUsage   int
	Elapsed      time.Duration
}

// Evaluator computes quality metrics for answered queries and persists them
// best-effort.
type Evaluator struct {
	store *Store
	blobs blobstore.Store
}

// NewEvaluator creates an Evaluator. store and blobs may each be nil, in
// which case the corresponding persistence is skipped.
func NewEvaluator(store *Store, blobs blobstore.Store) *Evaluator {
	return &Evaluator{store: store, blobs: blobs}
}

// Evaluate computes metrics for one query and persists them. Persistence
// failures are logged and never fail the query.
func (e *Evaluator) Evaluate(ctx context.Context, in Input) Metrics {
	count, present := countCitations(in.Response, len(in.Similarities))

	metrics := Metrics{
		QueryID:         in.QueryID,
		Query:           in.Query,
		LatencyMS:       float64(in.Elapsed) / float64(time.Millisecond),
		TokenUsage:      in.TokenUsage,
		ResponseLength:  len(in.Response),
		SourceCount:     len(in.Similarities),
		Citations:       Citations{Count: count, Present: present},
		SourceRelevance: SourceRelevance{Mean: mean(in.Similarities)},
		ConfidenceScore: mean(in.Similarities),
		CreatedAt:       time.Now().UTC(),
	}

	if e.store != nil {
		if err := e.store.InsertMetrics(ctx, metrics); err != nil {
			log.Printf("evaluation: storing metrics for %s: %v", in.QueryID, err)
		}
	}
	e.archive(ctx, metrics)

	return metrics
}

// archive mirrors the metrics record as JSON into the blob store.
func (e *Evaluator) archive(ctx context.Context, metrics Metrics) {
	if e.blobs == nil {
		return
	}
	data, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return
	}
	name := fmt.Sprintf("evaluations/%s/%s.json",
		metrics.QueryID, metrics.CreatedAt.Format("20060102T150405"))
	if _, err := e.blobs.Put(ctx, evaluationContainer, name, data, nil); err != nil {
		log.Printf("evaluation: archiving metrics for %s: %v", metrics.QueryID, err)
	}
}

// countCitations finds literal [1]..[n] references in the response, where n
// is the number of sources the prompt offered.
func countCitations(response string, sources int) (int, bool) {
	count := 0
	for i := 1; i <= sources; i++ {
		if strings.Contains(response, fmt.Sprintf("[%d]", i)) {
			count++
		}
	}
	return count, count > 0
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
