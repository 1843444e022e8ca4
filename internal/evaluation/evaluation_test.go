package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ziadkadry99/ragserve/internal/blobstore"
	"github.com/ziadkadry99/ragserve/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestEvaluateComputesMetrics(t *testing.T) {
	evaluator := NewEvaluator(nil, nil)

	metrics := evaluator.Evaluate(context.Background(), Input{
		QueryID:      "q1",
		Query:        "what is postgres",
		Response:     "Postgres is a database [1]. It supports SQL [2].",
		Similarities: []float64{0.9, 0.8},
		TokenUsage:   42,
		Elapsed:      1500 * time.Millisecond,
	})

	if math.Abs(metrics.ConfidenceScore-0.85) > 1e-9 {
		t.Errorf("ConfidenceScore = %f, want 0.85", metrics.ConfidenceScore)
	}
	if metrics.LatencyMS != 1500 {
		t.Errorf("LatencyMS = %f, want 1500", metrics.LatencyMS)
	}
	if metrics.Citations.Count != 2 || !metrics.Citations.Present {
		t.Errorf("Citations = %+v, want 2/present", metrics.Citations)
	}
	if metrics.SourceCount != 2 || metrics.TokenUsage != 42 {
		t.Errorf("SourceCount/TokenUsage = %d/%d", metrics.SourceCount, metrics.TokenUsage)
	}
}

func TestEvaluateZeroSources(t *testing.T) {
	evaluator := NewEvaluator(nil, nil)

	metrics := evaluator.Evaluate(context.Background(), Input{
		QueryID:  "q2",
		Response: "No relevant information found.",
	})

	if metrics.ConfidenceScore != 0 {
		t.Errorf("ConfidenceScore = %f, want 0", metrics.ConfidenceScore)
	}
	if metrics.Citations.Present {
		t.Error("citations reported present with zero sources")
	}
}

func TestCountCitationsIgnoresOutOfRange(t *testing.T) {
	// [3] is not a valid citation when only 2 sources were offered.
	count, present := countCitations("see [1] and [3]", 2)
	if count != 1 || !present {
		t.Errorf("countCitations = %d/%v, want 1/true", count, present)
	}
}

func TestCountCitationsSkipsUncitedIndex(t *testing.T) {
	count, present := countCitations("per [1], and later [3]", 3)
	if count != 2 || !present {
		t.Errorf("countCitations = %d/%v, want 2/true", count, present)
	}
}

func TestEvaluatePersistsMetrics(t *testing.T) {
	store := newTestStore(t)
	evaluator := NewEvaluator(store, nil)
	ctx := context.Background()

	evaluator.Evaluate(ctx, Input{
		QueryID:      "q3",
		Response:     "answer [1]",
		Similarities: []float64{0.75},
	})

	records, err := store.ListMetrics(ctx, "q3")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].ConfidenceScore != 0.75 {
		t.Errorf("stored ConfidenceScore = %f", records[0].ConfidenceScore)
	}
}

func TestEvaluateArchivesToBlob(t *testing.T) {
	blobs, err := blobstore.NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	evaluator := NewEvaluator(nil, blobs)

	metrics := evaluator.Evaluate(context.Background(), Input{
		QueryID:      "q4",
		Response:     "answer [1]",
		Similarities: []float64{0.8},
	})

	name := "evaluations/q4/" + metrics.CreatedAt.Format("20060102T150405") + ".json"
	data, err := blobs.Get(context.Background(), "evaluation-logs", name)
	if err != nil {
		t.Fatalf("archived record not found: %v", err)
	}
	var stored Metrics
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatal(err)
	}
	if stored.QueryID != "q4" {
		t.Errorf("archived QueryID = %q", stored.QueryID)
	}
}

func TestFeedbackAppendOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := store.InsertFeedback(ctx, Feedback{
			QueryID: "q5",
			Rating:  4,
			Helpful: true,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	records, err := store.ListFeedback(ctx, "q5")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Errorf("got %d feedback records, want 3 (append-only)", len(records))
	}
}

func TestInsertFeedbackValidatesRating(t *testing.T) {
	store := newTestStore(t)

	if err := store.InsertFeedback(context.Background(), Feedback{QueryID: "q", Rating: 6}); err == nil {
		t.Error("rating 6 accepted")
	}
	if err := store.InsertFeedback(context.Background(), Feedback{QueryID: "q", Rating: 0}); err == nil {
		t.Error("rating 0 accepted")
	}
	if err := store.InsertFeedback(context.Background(), Feedback{Rating: 3}); err == nil {
		t.Error("missing query_id accepted")
	}
}

func TestFeedbackRoute(t *testing.T) {
	store := newTestStore(t)
	router := chi.NewRouter()
	RegisterRoutes(router, store)

	body, _ := json.Marshal(Feedback{QueryID: "q6", Rating: 5, Helpful: true, Comment: "great"})
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/feedback/q6", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var records []Feedback
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Comment != "great" {
		t.Errorf("feedback list = %+v", records)
	}
}

func TestFeedbackRouteRejectsBadRating(t *testing.T) {
	store := newTestStore(t)
	router := chi.NewRouter()
	RegisterRoutes(router, store)

	body, _ := json.Marshal(Feedback{QueryID: "q7", Rating: 9})
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.InsertMetrics(ctx, Metrics{QueryID: "a", ConfidenceScore: 0.8, LatencyMS: 100, Citations: Citations{Present: true}})
	store.InsertMetrics(ctx, Metrics{QueryID: "b", ConfidenceScore: 0.4, LatencyMS: 300})
	store.InsertFeedback(ctx, Feedback{QueryID: "a", Rating: 4})

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalQueries != 2 {
		t.Errorf("TotalQueries = %d, want 2", stats.TotalQueries)
	}
	if math.Abs(stats.MeanConfidence-0.6) > 1e-9 {
		t.Errorf("MeanConfidence = %f, want 0.6", stats.MeanConfidence)
	}
	if stats.FeedbackCount != 1 || stats.MeanRating != 4 {
		t.Errorf("feedback stats = %d/%f", stats.FeedbackCount, stats.MeanRating)
	}
}
