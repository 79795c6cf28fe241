// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research fans a user query out to public knowledge sources,
// normalizes their responses, merges them into one AggregateResult, and
// formats that result as a bounded context block for an AI prompt.
package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/learnbuddy/internal/cache"
	"github.com/pdiddy/learnbuddy/internal/httputil"
	"github.com/pdiddy/learnbuddy/internal/logging"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// Source fetches and normalizes one provider's view of a query. Each
// provider (Wikipedia, DuckDuckGo, ...) implements it for its own result
// type. Fetch never panics on provider data; every failure is a returned
// error, usually a *FetchError.
type Source[T any] interface {
	Name() string
	Fetch(ctx context.Context, query string) (T, error)
}

// ErrorKind classifies why a source produced nothing.
type ErrorKind string

const (
	KindTransport   ErrorKind = "transport"
	KindStatus      ErrorKind = "status"
	KindMalformed   ErrorKind = "malformed"
	KindEmpty       ErrorKind = "empty"
	KindUnavailable ErrorKind = "unavailable"
	KindInternal    ErrorKind = "internal"
)

// FetchError is the failure value of a source call.
type FetchError struct {
	Source string
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Source, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsKind reports whether err is a *FetchError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == kind
}

// KindOf returns the kind of err, or KindInternal when err is not a *FetchError.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindInternal
}

// emptyResult is the error a source returns when the provider matched nothing.
func emptyResult(source, what string) error {
	return &FetchError{Source: source, Kind: KindEmpty, Err: errors.New(what)}
}

// classify wraps a transport-level error from httputil into a *FetchError.
func classify(source string, err error) error {
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	var se *httputil.StatusError
	switch {
	case errors.As(err, &se):
		return &FetchError{Source: source, Kind: KindStatus, Status: se.Code, Err: err}
	case errors.Is(err, httputil.ErrDecode):
		return &FetchError{Source: source, Kind: KindMalformed, Err: err}
	default:
		return &FetchError{Source: source, Kind: KindTransport, Err: err}
	}
}

// cachedSource consults the cache before delegating and stores successful
// results. Cached values are JSON; an undecodable value is treated as a miss.
type cachedSource[T any] struct {
	inner Source[T]
	cache cache.Cache
	tag   string
	log   *logging.Logger
}

// Cached wraps src so results are looked up and stored under "<tag>:<query>".
// A nil cache returns src unchanged.
func Cached[T any](src Source[T], c cache.Cache, tag string, log *logging.Logger) Source[T] {
	if c == nil {
		return src
	}
	return &cachedSource[T]{inner: src, cache: c, tag: tag, log: log}
}

func (s *cachedSource[T]) Name() string { return s.inner.Name() }

func (s *cachedSource[T]) Fetch(ctx context.Context, query string) (T, error) {
	key := cache.Key(s.tag, query)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			s.log.Debug("cache hit", "key", key)
			return v, nil
		}
		s.log.Warn("discarding undecodable cache entry", "key", key)
	}

	v, err := s.inner.Fetch(ctx, query)
	if err != nil {
		return v, err
	}
	if raw, err := json.Marshal(v); err == nil {
		s.cache.Put(ctx, key, raw)
	}
	return v, nil
}

// Per-source default request timeouts.
const (
	wikipediaTimeout   = 5 * time.Second
	duckduckgoTimeout  = 5 * time.Second
	musicbrainzTimeout = 10 * time.Second
	wikidataTimeout    = 8 * time.Second
	newsTimeout        = 8 * time.Second
	redditTimeout      = 8 * time.Second
	openLibraryTimeout = 8 * time.Second
)

// fetcher builds the HTTP fetcher for a source. A configured timeout
// overrides the source default.
func fetcher(client *http.Client, cfg types.HTTPConfig, sourceDefault time.Duration) httputil.Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = sourceDefault
	}
	return httputil.Fetcher{
		Client:     client,
		UserAgent:  cfg.UserAgent,
		Timeout:    timeout,
		MaxRetries: cfg.MaxRetries,
	}
}
