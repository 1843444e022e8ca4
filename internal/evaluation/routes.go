package evaluation

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the evaluation and feedback endpoints.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Post("/api/feedback", submitFeedbackHandler(store))
	r.Get("/api/feedback/{queryID}", listFeedbackHandler(store))
	r.Get("/api/evaluations/{queryID}", listMetricsHandler(store))
	r.Get("/api/evaluations/stats", statsHandler(store))
}

func submitFeedbackHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fb Feedback
		if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
		if fb.QueryID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query_id is required"})
			return
		}
		if fb.Rating < 1 || fb.Rating > 5 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rating must be between 1 and 5"})
			return
		}

		if err := store.InsertFeedback(r.Context(), fb); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
	}
}

func listFeedbackHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := store.ListFeedback(r.Context(), chi.URLParam(r, "queryID"))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if results == nil {
			results = []Feedback{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}

func listMetricsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := store.ListMetrics(r.Context(), chi.URLParam(r, "queryID"))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if results == nil {
			results = []Metrics{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}

func statsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := store.Stats(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
