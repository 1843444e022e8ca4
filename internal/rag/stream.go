package rag

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ziadkadry99/ragserve/internal/evaluation"
	"github.com/ziadkadry99/ragserve/internal/llm"
)

// QueryStream answers a question as a stream of events: one sources event,
// zero or more token events, then either a metadata event or an error event.
// A query with no sources above the similarity threshold yields a single
// error event. The channel closes after the terminal event. Cancelling ctx
// stops the stream.
func (e *Engine) QueryStream(ctx context.Context, req QueryRequest) <-chan StreamEvent {
	events := make(chan StreamEvent)

	go func() {
		defer close(events)
		start := time.Now()
		queryID := uuid.NewString()

		emit := func(ev StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		sources, err := e.retrieve(ctx, req)
		if err != nil {
			emit(StreamEvent{Type: EventError, Error: err.Error()})
			return
		}
		if len(sources) == 0 {
			// Nothing above the similarity threshold: no generation call,
			// just a single error event.
			e.evaluator.Evaluate(ctx, evaluation.Input{
				QueryID:  queryID,
				Query:    req.Query,
				Response: noAnswerResponse,
				Elapsed:  time.Since(start),
			})
			emit(StreamEvent{Type: EventError, Error: noAnswerResponse})
			return
		}
		if !emit(StreamEvent{Type: EventSources, Sources: sources}) {
			return
		}

		resp, err := e.provider.CompleteStream(ctx, llm.CompletionRequest{
			Model:       e.cfg.Model,
			Messages:    BuildPrompt(req.Query, sources),
			MaxTokens:   e.cfg.Generate.MaxTokens,
			Temperature: e.cfg.Generate.Temperature,
		}, func(delta string) error {
			if !emit(StreamEvent{Type: EventToken, Content: delta}) {
				return ctx.Err()
			}
			return nil
		})
		if err != nil {
			emit(StreamEvent{Type: EventError, Error: err.Error()})
			return
		}

		tokens := resp.TotalTokens()
		if tokens == 0 {
			tokens = llm.EstimateTokens(e.cfg.Model, resp.Content)
		}

		metrics := e.evaluator.Evaluate(ctx, evaluation.Input{
			QueryID:      queryID,
			Query:        req.Query,
			Response:     resp.Content,
			Similarities: similarities(sources),
			TokenUsage:   tokens,
			Elapsed:      time.Since(start),
		})

		emit(StreamEvent{Type: EventMetadata, Metadata: &StreamMetadata{
			QueryID:        queryID,
			Confidence:     metrics.ConfidenceScore,
			ResponseTimeMS: metrics.LatencyMS,
			SourcesCount:   len(sources),
			TokenCount:     tokens,
		}})
	}()

	return events
}
