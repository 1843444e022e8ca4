package llm

import "context"

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// CompleteStream sends a completion request and invokes onDelta for each
	// content fragment as it arrives. The returned response carries the full
	// assembled content and, when the provider reports it, token usage.
	// A non-nil error from onDelta aborts the stream.
	CompleteStream(ctx context.Context, req CompletionRequest, onDelta func(string) error) (*CompletionResponse, error)

	// Name returns the name of this provider.
	Name() string
}
