// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/learnbuddy/pkg/types"
)

func TestBridgeSubmit(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	b := NewBridge(func(_ context.Context, q string) types.AggregateResult {
		return types.AggregateResult{Query: q, DDG: &types.InstantAnswer{Answer: "42"}}
	}, 2)
	defer b.Close()

	res, ok := <-b.Submit(context.Background(), "meaning of life")
	require.True(t, ok)
	assert.Equal(t, "meaning of life", res.Query)
	require.NotNil(t, res.DDG)

	_, ok = <-b.Submit(context.Background(), "x")
	assert.True(t, ok)
}

func TestBridgeSubmitDoesNotBlock(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	release := make(chan struct{})
	b := NewBridge(func(_ context.Context, q string) types.AggregateResult {
		<-release
		return types.AggregateResult{Query: q}
	}, 1)

	start := time.Now()
	ch := b.Submit(context.Background(), "slow")
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(release)
	<-ch
	b.Close()
}

func TestBridgeBoundsWorkers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var running, peak atomic.Int32
	b := NewBridge(func(_ context.Context, q string) types.AggregateResult {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		running.Add(-1)
		return types.AggregateResult{Query: q}
	}, 2)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		ch := b.Submit(context.Background(), "q")
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-ch
		}()
	}
	wg.Wait()
	b.Close()

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestBridgeCancelledBeforeWorkerFree(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	started := make(chan struct{})
	release := make(chan struct{})
	b := NewBridge(func(_ context.Context, q string) types.AggregateResult {
		close(started)
		<-release
		return types.AggregateResult{Query: q, DDG: &types.InstantAnswer{Answer: "busy"}}
	}, 1)

	busy := b.Submit(context.Background(), "first")
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	waiting := b.Submit(ctx, "second")
	cancel()

	res := <-waiting
	assert.Equal(t, "second", res.Query)
	assert.True(t, res.IsEmpty())

	close(release)
	<-busy
	b.Close()
}

func TestBridgeContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	b := NewBridge(func(_ context.Context, q string) types.AggregateResult {
		if q == "nothing" {
			return types.AggregateResult{Query: q}
		}
		return types.AggregateResult{Query: q, Knowledge: &types.WikipediaSummary{Title: "Jazz", Snippet: "A genre"}}
	}, 0)
	defer b.Close()

	out := b.Context(context.Background(), "jazz")
	assert.Contains(t, out, contextHeader)
	assert.Contains(t, out, "Topic: Jazz")

	assert.Equal(t, "", b.Context(context.Background(), "nothing"))
}

func TestBridgeContextHonorsDeadline(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	release := make(chan struct{})
	b := NewBridge(func(_ context.Context, q string) types.AggregateResult {
		<-release
		return types.AggregateResult{Query: q, DDG: &types.InstantAnswer{Answer: "late"}}
	}, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.Equal(t, "", b.Context(ctx, "slow"))

	close(release)
	b.Close()
}

func TestBridgeWithAggregator(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newFakeSources()
	f.wiki.value, f.wiki.err = &types.WikipediaSummary{Title: "Joe Biden"}, nil
	f.extract.value, f.extract.err = "Joseph Robinette Biden Jr.", nil

	agg, _ := newTestAggregator(t, f, Options{})
	b := NewBridge(agg.Aggregate, 2)
	defer b.Close()

	out := b.Context(context.Background(), "who is the current president")
	assert.Contains(t, out, "Topic: Joe Biden")
	assert.Contains(t, out, "Joseph Robinette Biden Jr.")
}
