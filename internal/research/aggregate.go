// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/learnbuddy/internal/cache"
	"github.com/pdiddy/learnbuddy/internal/intent"
	"github.com/pdiddy/learnbuddy/internal/logging"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// Options tunes how an Aggregator runs its sources.
type Options struct {
	// Deadline bounds one aggregation. When it expires, calls still in
	// flight are cancelled and the partial result is returned uncached.
	// Zero means no overall deadline.
	Deadline time.Duration

	// Sequential runs sources one at a time in priority order.
	Sequential bool

	// DedupeInflight makes concurrent aggregations of the same query share
	// one execution.
	DedupeInflight bool

	// Now overrides the clock used for result timestamps.
	Now func() time.Time
}

// OptionsFromConfig maps research configuration onto aggregator options.
func OptionsFromConfig(cfg types.ResearchConfig) Options {
	return Options{
		Deadline:       cfg.Deadline,
		Sequential:     cfg.Sequential,
		DedupeInflight: cfg.DedupeInflight,
	}
}

// Aggregator decides which sources a query needs, runs them, and merges
// whatever they return into one AggregateResult.
type Aggregator struct {
	src   Sources
	cache cache.Cache
	opts  Options
	log   *logging.Logger
	group singleflight.Group
}

// NewAggregator creates an Aggregator. A nil cache disables result caching.
func NewAggregator(src Sources, c cache.Cache, opts Options, log *logging.Logger) *Aggregator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Aggregator{src: src, cache: c, opts: opts, log: log}
}

// Aggregate returns the merged research result for query. It never fails:
// a source that errors or panics leaves its field empty and is recorded in
// Failures. Results are cached under "web:<query>" unless the overall
// deadline cut the run short. With DedupeInflight, a caller whose ctx ends
// while waiting on a shared run gets an empty result for query.
func (a *Aggregator) Aggregate(ctx context.Context, query string) types.AggregateResult {
	key := cache.Key(tagAggregate, query)
	if res, ok := a.lookup(ctx, key); ok {
		return res
	}

	if !a.opts.DedupeInflight {
		return a.aggregate(ctx, query, key)
	}
	// The shared run outlives any one caller; Options.Deadline still bounds it.
	ch := a.group.DoChan(query, func() (any, error) {
		return a.aggregate(context.WithoutCancel(ctx), query, key), nil
	})
	select {
	case r := <-ch:
		if r.Shared {
			a.log.Debug("shared in-flight aggregation", "query", query)
		}
		return r.Val.(types.AggregateResult)
	case <-ctx.Done():
		a.log.Debug("caller left in-flight aggregation", "query", query, "error", ctx.Err())
		return types.AggregateResult{Query: query, Timestamp: a.opts.Now().UTC().Round(0)}
	}
}

func (a *Aggregator) lookup(ctx context.Context, key string) (types.AggregateResult, bool) {
	if a.cache == nil {
		return types.AggregateResult{}, false
	}
	raw, ok := a.cache.Get(ctx, key)
	if !ok {
		return types.AggregateResult{}, false
	}
	var res types.AggregateResult
	if err := json.Unmarshal(raw, &res); err != nil {
		a.log.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return types.AggregateResult{}, false
	}
	a.log.Debug("cache hit", "key", key)
	return res, true
}

func (a *Aggregator) aggregate(ctx context.Context, query, key string) types.AggregateResult {
	start := time.Now()
	flags := intent.Classify(query)

	if a.opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Deadline)
		defer cancel()
	}

	m := &merger{log: a.log, query: query}
	if a.opts.Sequential {
		a.runSequential(ctx, query, flags, m)
	} else {
		a.runConcurrent(ctx, query, flags, m)
	}

	res := m.result()
	res.Query = query
	res.Timestamp = a.opts.Now().UTC().Round(0)

	cut := ctx.Err() != nil
	if !cut && a.cache != nil {
		if raw, err := json.Marshal(res); err == nil {
			a.cache.Put(ctx, key, raw)
		}
	}

	a.log.Info("aggregation complete",
		"query", query,
		"sources", res.SourceCount(),
		"failures", len(res.Failures),
		"truncated", cut,
		"elapsed", time.Since(start).String(),
	)
	return res
}

// runSequential follows the priority order: Wikipedia chain, DuckDuckGo,
// MusicBrainz, Wikidata, news, then community posts or books.
func (a *Aggregator) runSequential(ctx context.Context, query string, flags types.IntentFlags, m *merger) {
	a.wikipedia(ctx, query, m)
	a.instantAnswer(ctx, query, m)
	if flags.IsMusic || !m.hasText() {
		a.music(ctx, query, m)
	}
	a.wikidata(ctx, query, m)
	if flags.IsNews {
		a.news(ctx, query, m)
	}
	if flags.IsBook {
		a.books(ctx, query, m)
	} else {
		a.reddit(ctx, query, m)
	}
}

// runConcurrent starts every eligible source at once. The MusicBrainz
// fallback for non-music queries waits for the Wikipedia chain and
// DuckDuckGo, since it depends on what they found.
func (a *Aggregator) runConcurrent(ctx context.Context, query string, flags types.IntentFlags, m *merger) {
	g, gctx := errgroup.WithContext(ctx)

	var text sync.WaitGroup
	text.Add(2)
	g.Go(func() error {
		defer text.Done()
		a.wikipedia(gctx, query, m)
		return nil
	})
	g.Go(func() error {
		defer text.Done()
		a.instantAnswer(gctx, query, m)
		return nil
	})
	g.Go(func() error {
		if !flags.IsMusic {
			text.Wait()
			if m.hasText() {
				return nil
			}
		}
		a.music(gctx, query, m)
		return nil
	})
	g.Go(func() error {
		a.wikidata(gctx, query, m)
		return nil
	})
	if flags.IsNews {
		g.Go(func() error {
			a.news(gctx, query, m)
			return nil
		})
	}
	g.Go(func() error {
		if flags.IsBook {
			a.books(gctx, query, m)
		} else {
			a.reddit(gctx, query, m)
		}
		return nil
	})

	_ = g.Wait()
}

func (a *Aggregator) wikipedia(ctx context.Context, query string, m *merger) {
	summary, err := call(ctx, a.src.Wikipedia, query)
	if err != nil {
		m.fail(err)
		return
	}
	if summary == nil {
		return
	}
	m.set(func(r *types.AggregateResult) { r.Knowledge = summary })

	if summary.Title == "" {
		return
	}
	extract, err := call(ctx, a.src.Extract, summary.Title)
	if err != nil {
		m.fail(err)
		return
	}
	if extract != "" {
		m.set(func(r *types.AggregateResult) { r.FullExtract = extract })
	}
}

func (a *Aggregator) instantAnswer(ctx context.Context, query string, m *merger) {
	ia, err := call(ctx, a.src.DuckDuckGo, query)
	if err != nil {
		m.fail(err)
		return
	}
	if ia != nil {
		m.set(func(r *types.AggregateResult) { r.DDG = ia })
	}
}

func (a *Aggregator) music(ctx context.Context, query string, m *merger) {
	p, err := call(ctx, a.src.MusicBrainz, query)
	if err != nil {
		m.fail(err)
		return
	}
	if p != nil {
		m.set(func(r *types.AggregateResult) { r.MusicBrainz = p })
	}
}

func (a *Aggregator) wikidata(ctx context.Context, query string, m *merger) {
	f, err := call(ctx, a.src.Wikidata, query)
	if err != nil {
		m.fail(err)
		return
	}
	if f != nil {
		m.set(func(r *types.AggregateResult) { r.Wikidata = f })
	}
}

func (a *Aggregator) news(ctx context.Context, query string, m *merger) {
	items, err := call(ctx, a.src.News, query)
	if err != nil {
		m.fail(err)
		return
	}
	if len(items) > 0 {
		m.set(func(r *types.AggregateResult) { r.News = items })
	}
}

func (a *Aggregator) reddit(ctx context.Context, query string, m *merger) {
	posts, err := call(ctx, a.src.Reddit, query)
	if err != nil {
		m.fail(err)
		return
	}
	if len(posts) > 0 {
		m.set(func(r *types.AggregateResult) { r.Reddit = posts })
	}
}

func (a *Aggregator) books(ctx context.Context, query string, m *merger) {
	books, err := call(ctx, a.src.Books, query)
	if err != nil {
		m.fail(err)
		return
	}
	if len(books) > 0 {
		m.set(func(r *types.AggregateResult) { r.Books = books })
	}
}

// call invokes src, converting a panic into a KindInternal FetchError. A nil
// source yields the zero value, and a finished context short-circuits the
// call.
func call[T any](ctx context.Context, src Source[T], query string) (v T, err error) {
	if src == nil {
		return v, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return v, &FetchError{Source: src.Name(), Kind: KindTransport, Err: ctxErr}
	}
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v = zero
			err = &FetchError{Source: src.Name(), Kind: KindInternal, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	v, err = src.Fetch(ctx, query)
	if err != nil {
		err = classify(src.Name(), err)
	}
	return v, err
}

// merger serializes writes into the result under construction.
type merger struct {
	mu    sync.Mutex
	res   types.AggregateResult
	log   *logging.Logger
	query string
}

func (m *merger) set(fn func(r *types.AggregateResult)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.res)
}

func (m *merger) fail(err error) {
	f := types.SourceFailure{Source: "unknown", Kind: string(KindOf(err)), Error: err.Error()}
	var fe *FetchError
	if errors.As(err, &fe) {
		f.Source = fe.Source
	}
	m.log.Warn("source failed", "source", f.Source, "kind", f.Kind, "query", m.query, "error", err)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.res.Failures = append(m.res.Failures, f)
}

// hasText reports whether a Wikipedia extract or a DuckDuckGo abstract was
// obtained.
func (m *merger) hasText() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.res.FullExtract != "" || (m.res.DDG != nil && m.res.DDG.Abstract != "")
}

func (m *merger) result() types.AggregateResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := m.res
	sort.SliceStable(res.Failures, func(i, j int) bool {
		return res.Failures[i].Source < res.Failures[j].Source
	})
	return res
}
