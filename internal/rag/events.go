package rag

// EventType identifies a streaming query event.
type EventType string

const (
	// EventSources is sent once, first, with the retrieved sources.
	EventSources EventType = "sources"
	// EventToken carries one response fragment.
	EventToken EventType = "token"
	// EventMetadata closes a successful stream.
	EventMetadata EventType = "metadata"
	// EventError closes a failed stream.
	EventError EventType = "error"
)

// StreamMetadata is the payload of the final metadata event.
type StreamMetadata struct {
	QueryID        string  `json:"query_id"`
	Confidence     float64 `json:"confidence"`
	ResponseTimeMS float64 `json:"response_time_ms"`
	SourcesCount   int     `json:"sources_count"`
	TokenCount     int     `json:"token_count"`
}

// StreamEvent is one event in a streaming query. Exactly one of Sources,
// Content, Metadata or Error is set, matching Type.
type StreamEvent struct {
	Type     EventType       `json:"type"`
	Sources  []Source        `json:"sources,omitempty"`
	Content  string          `json:"content,omitempty"`
	Metadata *StreamMetadata `json:"metadata,omitempty"`
	Error    string          `json:"error,omitempty"`
}
