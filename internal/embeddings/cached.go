package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ziadkadry99/ragserve/internal/cache"
)

const (
	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 4 * time.Second
)

// CachedEmbedder wraps an Embedder with a content-hash cache and bounded
// concurrency. Texts whose embeddings are cached skip the provider entirely;
// misses are embedded concurrently in groups of batchSize, each with retry on
// transient failures.
type CachedEmbedder struct {
	provider  Embedder
	cache     cache.Store
	ttl       time.Duration
	batchSize int
}

// NewCachedEmbedder wraps provider. store may be nil to disable caching.
func NewCachedEmbedder(provider Embedder, store cache.Store, ttl time.Duration, batchSize int) *CachedEmbedder {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &CachedEmbedder{
		provider:  provider,
		cache:     store,
		ttl:       ttl,
		batchSize: batchSize,
	}
}

func (c *CachedEmbedder) Name() string { return c.provider.Name() }

func (c *CachedEmbedder) Dimensions() int { return c.provider.Dimensions() }

// CacheKey returns the cache key for a text: "emb:" plus the hex SHA-256 of
// the text. The key depends only on content, so re-ingesting an unchanged
// document reuses its embeddings.
func CacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + hex.EncodeToString(sum[:])
}

// Embed embeds all texts and fails on the first unrecoverable error.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, errs := c.EmbedEach(ctx, texts)
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
	}
	return vectors, nil
}

// EmbedEach embeds every text independently and returns per-slot results in
// input order. A failed slot has a nil vector and a non-nil error; other
// slots are unaffected, letting callers skip failed chunks.
func (c *CachedEmbedder) EmbedEach(ctx context.Context, texts []string) ([][]float32, []error) {
	vectors := make([][]float32, len(texts))
	errs := make([]error, len(texts))

	// Resolve cache hits first.
	var misses []int
	for i, text := range texts {
		if vec, ok := c.cacheGet(ctx, text); ok {
			vectors[i] = vec
			continue
		}
		misses = append(misses, i)
	}
	if len(misses) == 0 {
		return vectors, errs
	}

	// Embed misses concurrently, at most batchSize in flight.
	var wg sync.WaitGroup
	sem := make(chan struct{}, c.batchSize)
	for _, idx := range misses {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			vec, err := c.embedWithRetry(ctx, texts[idx])
			if err != nil {
				errs[idx] = err
				return
			}
			vectors[idx] = vec
			c.cachePut(ctx, texts[idx], vec)
		}(idx)
	}
	wg.Wait()

	return vectors, errs
}

// embedWithRetry calls the provider for a single text, retrying transient
// failures with exponential backoff.
func (c *CachedEmbedder) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	backoff := initialBackoff
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		results, err := c.provider.Embed(ctx, []string{text})
		if err == nil {
			if len(results) == 0 {
				return nil, &ProviderError{Provider: c.provider.Name(), Err: fmt.Errorf("empty embedding result")}
			}
			return results[0], nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return nil, lastErr
}

func (c *CachedEmbedder) cacheGet(ctx context.Context, text string) ([]float32, bool) {
	if c.cache == nil {
		return nil, false
	}
	data, ok, err := c.cache.Get(ctx, CacheKey(text))
	if err != nil {
		log.Printf("cache: read failed: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(data, &vec); err != nil {
		log.Printf("cache: corrupt entry for %s: %v", CacheKey(text), err)
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) cachePut(ctx context.Context, text string, vec []float32) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, CacheKey(text), data, c.ttl); err != nil {
		log.Printf("cache: write failed: %v", err)
	}
}
