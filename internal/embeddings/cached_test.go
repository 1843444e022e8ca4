package embeddings

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ziadkadry99/ragserve/internal/cache"
)

// fakeEmbedder returns a deterministic vector per text and counts calls.
// failures maps a text to how many times it should fail before succeeding;
// -1 means fail forever with a non-retryable error.
type fakeEmbedder struct {
	mu       sync.Mutex
	calls    int
	failures map[string]int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if n, ok := f.failures[text]; ok {
			if n == -1 {
				return nil, &ProviderError{Provider: "fake", Status: 401, Err: fmt.Errorf("bad key")}
			}
			if n > 0 {
				f.failures[text] = n - 1
				return nil, &ProviderError{Provider: "fake", Status: 429, Transient: true, Err: fmt.Errorf("rate limited")}
			}
		}
		out = append(out, []float32{float32(len(text)), 1})
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return 2 }
func (f *fakeEmbedder) Name() string    { return "fake" }

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestCacheKeyIsContentHash(t *testing.T) {
	a := CacheKey("hello")
	b := CacheKey("hello")
	c := CacheKey("world")

	if a != b {
		t.Error("same content produced different cache keys")
	}
	if a == c {
		t.Error("different content produced the same cache key")
	}
	if len(a) != len("emb:")+64 {
		t.Errorf("key %q is not emb: plus a hex sha256", a)
	}
}

func TestEmbedEachPreservesOrder(t *testing.T) {
	fake := &fakeEmbedder{}
	embedder := NewCachedEmbedder(fake, cache.NewMemoryStore(), time.Hour, 5)

	texts := []string{"a", "bb", "ccc", "dddd"}
	vectors, errs := embedder.EmbedEach(context.Background(), texts)

	for i, text := range texts {
		if errs[i] != nil {
			t.Fatalf("slot %d: %v", i, errs[i])
		}
		if vectors[i][0] != float32(len(text)) {
			t.Errorf("slot %d got vector for a different text", i)
		}
	}
}

func TestEmbedEachOrderWithMixedCacheHits(t *testing.T) {
	fake := &fakeEmbedder{}
	store := cache.NewMemoryStore()
	embedder := NewCachedEmbedder(fake, store, time.Hour, 5)
	ctx := context.Background()

	// Warm the cache for the first and third texts only.
	if _, errs := embedder.EmbedEach(ctx, []string{"a", "ccc"}); errs[0] != nil || errs[1] != nil {
		t.Fatalf("warming cache: %v, %v", errs[0], errs[1])
	}
	warmed := fake.callCount()

	texts := []string{"a", "bb", "ccc"}
	vectors, errs := embedder.EmbedEach(ctx, texts)
	for i, text := range texts {
		if errs[i] != nil {
			t.Fatalf("slot %d: %v", i, errs[i])
		}
		if vectors[i][0] != float32(len(text)) {
			t.Errorf("slot %d got vector for a different text", i)
		}
	}
	if fake.callCount() != warmed+1 {
		t.Errorf("provider called %d times, want %d (only the miss)", fake.callCount(), warmed+1)
	}
}

func TestEmbedEachUsesCache(t *testing.T) {
	fake := &fakeEmbedder{}
	embedder := NewCachedEmbedder(fake, cache.NewMemoryStore(), time.Hour, 5)
	ctx := context.Background()

	if _, errs := embedder.EmbedEach(ctx, []string{"repeat"}); errs[0] != nil {
		t.Fatal(errs[0])
	}
	first := fake.callCount()

	if _, errs := embedder.EmbedEach(ctx, []string{"repeat"}); errs[0] != nil {
		t.Fatal(errs[0])
	}
	if fake.callCount() != first {
		t.Errorf("second embed hit the provider (%d calls, want %d)", fake.callCount(), first)
	}
}

func TestEmbedEachRetriesTransientFailures(t *testing.T) {
	fake := &fakeEmbedder{failures: map[string]int{"flaky": 2}}
	embedder := NewCachedEmbedder(fake, nil, time.Hour, 1)

	vectors, errs := embedder.EmbedEach(context.Background(), []string{"flaky"})
	if errs[0] != nil {
		t.Fatalf("embed failed after retries: %v", errs[0])
	}
	if vectors[0] == nil {
		t.Fatal("no vector returned")
	}
}

func TestEmbedEachDoesNotRetryPermanentFailures(t *testing.T) {
	fake := &fakeEmbedder{failures: map[string]int{"broken": -1}}
	embedder := NewCachedEmbedder(fake, nil, time.Hour, 1)

	_, errs := embedder.EmbedEach(context.Background(), []string{"broken"})
	if errs[0] == nil {
		t.Fatal("expected an error for a permanent failure")
	}
	if fake.callCount() != 1 {
		t.Errorf("provider called %d times for a non-retryable error, want 1", fake.callCount())
	}
}

func TestEmbedEachIsolatesFailures(t *testing.T) {
	fake := &fakeEmbedder{failures: map[string]int{"broken": -1}}
	embedder := NewCachedEmbedder(fake, cache.NewMemoryStore(), time.Hour, 2)

	texts := []string{"good one", "broken", "good two"}
	vectors, errs := embedder.EmbedEach(context.Background(), texts)

	if errs[0] != nil || errs[2] != nil {
		t.Errorf("healthy slots failed: %v, %v", errs[0], errs[2])
	}
	if errs[1] == nil {
		t.Error("broken slot did not report its error")
	}
	if vectors[1] != nil {
		t.Error("broken slot has a vector")
	}
}

func TestEmbedFailsOnAnyError(t *testing.T) {
	fake := &fakeEmbedder{failures: map[string]int{"broken": -1}}
	embedder := NewCachedEmbedder(fake, nil, time.Hour, 2)

	if _, err := embedder.Embed(context.Background(), []string{"fine", "broken"}); err == nil {
		t.Fatal("Embed succeeded despite a failed slot")
	}
}
