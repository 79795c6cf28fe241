// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache stores normalized research results keyed by
// "<source-tag>:<query>" with a fixed time-to-live.
//
// Values are opaque byte slices (JSON-encoded results); a Put replaces the
// whole entry for its key and never mutates an existing one.
package cache

import (
	"context"
	"fmt"

	"github.com/pdiddy/learnbuddy/internal/logging"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// Cache is the contract every backend implements. Get reports absent both
// for unknown keys and for entries older than the TTL. Implementations are
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte)
}

// Stats reports cache size and effectiveness.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Key builds the cache key for a source tag and query.
func Key(tag, query string) string {
	return tag + ":" + query
}

// New constructs the backend selected by cfg.
func New(ctx context.Context, cfg types.CacheConfig, log *logging.Logger) (Cache, error) {
	switch cfg.Backend {
	case "", types.CacheMemory:
		m, err := NewMemory(cfg.Capacity, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return m, nil
	case types.CacheRedis:
		r, err := NewRedis(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want memory or redis)", cfg.Backend)
	}
}
