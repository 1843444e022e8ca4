package rag

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/ragserve/internal/auth"
	"github.com/ziadkadry99/ragserve/internal/documents"
)

// RegisterRoutes mounts the document and query endpoints.
func RegisterRoutes(r chi.Router, engine *Engine) {
	r.Post("/api/documents", ingestHandler(engine))
	r.Get("/api/documents", listHandler(engine))
	r.Delete("/api/documents/{documentID}", deleteHandler(engine))
	r.Post("/api/query", queryHandler(engine))
	r.Post("/api/query/stream", streamHandler(engine))
	r.Get("/api/query/ws", wsHandler(engine))
}

func ingestHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req IngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
		if req.Content == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "content is required"})
			return
		}
		if req.CreatedBy == "" {
			if id, ok := auth.IdentityFrom(r.Context()); ok {
				req.CreatedBy = id.UserID
			}
		}

		result, err := engine.Ingest(r.Context(), req)
		if err != nil {
			var ingErr *IngestionError
			if errors.As(err, &ingErr) {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusCreated, result)
	}
}

func listHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := documents.ListFilter{
			DocumentType: r.URL.Query().Get("document_type"),
			Tag:          r.URL.Query().Get("tag"),
			CreatedBy:    r.URL.Query().Get("created_by"),
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				filter.Limit = n
			}
		}
		if v := r.URL.Query().Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				filter.Offset = n
			}
		}

		docs, total, err := engine.List(r.Context(), filter)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if docs == nil {
			docs = []documents.Document{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"documents": docs,
			"total":     total,
		})
	}
}

func deleteHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		documentID := chi.URLParam(r, "documentID")

		err := engine.Delete(r.Context(), documentID)
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "document_id": documentID})
	}
}

func queryHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
		if req.Query == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
			return
		}

		result, err := engine.Query(r.Context(), req)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// streamHandler answers over Server-Sent Events: each event is a JSON
// StreamEvent in a "data:" line, and the stream ends with "data: [DONE]".
func streamHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
		if req.Query == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for event := range engine.QueryStream(r.Context(), req) {
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("rag: marshalling stream event: %v", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsHandler is the WebSocket variant of the streaming query: the client
// sends one QueryRequest as JSON and receives StreamEvent frames.
func wsHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("rag: websocket upgrade: %v", err)
			return
		}
		defer conn.Close()

		var req QueryRequest
		if err := conn.ReadJSON(&req); err != nil {
			conn.WriteJSON(StreamEvent{Type: EventError, Error: "invalid query: " + err.Error()})
			return
		}
		if req.Query == "" {
			conn.WriteJSON(StreamEvent{Type: EventError, Error: "query is required"})
			return
		}

		for event := range engine.QueryStream(r.Context(), req) {
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("rag: websocket write: %v", err)
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
