package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeProvider struct {
	calls int
}

func (f *fakeProvider) Complete(_ context.Context, _ CompletionRequest) (*CompletionResponse, error) {
	f.calls++
	return &CompletionResponse{Content: "ok"}, nil
}

func (f *fakeProvider) CompleteStream(_ context.Context, _ CompletionRequest, onDelta func(string) error) (*CompletionResponse, error) {
	f.calls++
	if err := onDelta("ok"); err != nil {
		return nil, err
	}
	return &CompletionResponse{Content: "ok"}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	fake := &fakeProvider{}
	limited := NewRateLimitedProvider(fake, 60)

	for i := 0; i < 5; i++ {
		if _, err := limited.Complete(context.Background(), CompletionRequest{}); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if fake.calls != 5 {
		t.Errorf("provider saw %d calls, want 5", fake.calls)
	}
}

func TestRateLimiterBlocksWhenExhausted(t *testing.T) {
	fake := &fakeProvider{}
	limited := NewRateLimitedProvider(fake, 1)

	// First request drains the bucket.
	if _, err := limited.Complete(context.Background(), CompletionRequest{}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := limited.Complete(ctx, CompletionRequest{}); err == nil {
		t.Fatal("second request did not block on an empty bucket")
	}
}

func TestRateLimiterWrapsStreaming(t *testing.T) {
	fake := &fakeProvider{}
	limited := NewRateLimitedProvider(fake, 60)

	var got strings.Builder
	resp, err := limited.CompleteStream(context.Background(), CompletionRequest{}, func(delta string) error {
		got.WriteString(delta)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "ok" || got.String() != "ok" {
		t.Errorf("stream content = %q / %q, want ok", resp.Content, got.String())
	}
}

func TestOllamaComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Stream {
			t.Error("Complete sent a streaming request")
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message:         ollamaMessage{Role: "assistant", Content: "The answer. [1]"},
			Model:           req.Model,
			Done:            true,
			DoneReason:      "stop",
			PromptEvalCount: 12,
			EvalCount:       7,
		})
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3.1")
	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "question"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "The answer. [1]" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.InputTokens != 12 || resp.OutputTokens != 7 {
		t.Errorf("tokens = %d/%d, want 12/7", resp.InputTokens, resp.OutputTokens)
	}
}

func TestOllamaCompleteStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enc := json.NewEncoder(w)
		enc.Encode(ollamaChatResponse{Message: ollamaMessage{Content: "Hello"}})
		enc.Encode(ollamaChatResponse{Message: ollamaMessage{Content: " world"}})
		enc.Encode(ollamaChatResponse{
			Done: true, DoneReason: "stop", Model: "llama3.1",
			PromptEvalCount: 3, EvalCount: 2,
		})
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3.1")
	var deltas []string
	resp, err := provider.CompleteStream(context.Background(), CompletionRequest{}, func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "Hello world" {
		t.Errorf("Content = %q, want Hello world", resp.Content)
	}
	if len(deltas) != 2 {
		t.Errorf("got %d deltas, want 2", len(deltas))
	}
	if resp.InputTokens != 3 || resp.OutputTokens != 2 {
		t.Errorf("tokens = %d/%d, want 3/2", resp.InputTokens, resp.OutputTokens)
	}
}

func TestOllamaErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "missing")
	if _, err := provider.Complete(context.Background(), CompletionRequest{}); err == nil {
		t.Fatal("Complete succeeded against an error response")
	}
}

func TestEstimateTokensNeverZeroForText(t *testing.T) {
	if n := EstimateTokens("gpt-4o-mini", "some reasonably sized piece of text"); n <= 0 {
		t.Errorf("EstimateTokens = %d, want > 0", n)
	}
}

func TestNewProviderRejectsUnknownType(t *testing.T) {
	if _, err := NewProvider("bedrock", "m"); err == nil {
		t.Fatal("NewProvider accepted an unknown provider type")
	}
}
