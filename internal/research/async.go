// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/learnbuddy/pkg/types"
)

// AggregateFunc is the operation a Bridge runs off the caller's goroutine.
type AggregateFunc func(ctx context.Context, query string) types.AggregateResult

// Bridge runs aggregations on a bounded pool so a caller handling many
// requests never blocks on outbound calls.
type Bridge struct {
	aggregate AggregateFunc
	sem       *semaphore.Weighted
	wg        sync.WaitGroup
}

// NewBridge creates a Bridge that runs at most workers aggregations at once.
func NewBridge(agg AggregateFunc, workers int) *Bridge {
	if workers <= 0 {
		workers = types.DefaultWorkers
	}
	return &Bridge{aggregate: agg, sem: semaphore.NewWeighted(int64(workers))}
}

// Submit schedules an aggregation and returns immediately. The channel
// receives exactly one result and is then closed. If ctx ends before a
// worker is free, the result carries only the query and no content.
func (b *Bridge) Submit(ctx context.Context, query string) <-chan types.AggregateResult {
	out := make(chan types.AggregateResult, 1)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer close(out)

		if err := b.sem.Acquire(ctx, 1); err != nil {
			out <- types.AggregateResult{Query: query}
			return
		}
		defer b.sem.Release(1)
		out <- b.aggregate(ctx, query)
	}()
	return out
}

// Context aggregates query on the pool and formats the result. It returns
// "" when nothing was found or ctx ended first.
func (b *Bridge) Context(ctx context.Context, query string) string {
	select {
	case res := <-b.Submit(ctx, query):
		return Format(res)
	case <-ctx.Done():
		return ""
	}
}

// Close waits for submitted work to finish.
func (b *Bridge) Close() {
	b.wg.Wait()
}
