// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pdiddy/learnbuddy/internal/logging"
	"github.com/pdiddy/learnbuddy/pkg/types"
)

// Redis shares the cache between processes. Expiry is delegated to the
// server (SET ... EX ttl), so a returned value is always fresh.
type Redis struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
	log    *logging.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedis connects to cfg.RedisAddr and verifies the connection with a ping.
func NewRedis(ctx context.Context, cfg types.CacheConfig, log *logging.Logger) (*Redis, error) {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, fmt.Errorf("redis cache requires redis_addr")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %v", cfg.TTL)
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.RedisPassword,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{
		rdb:    rdb,
		prefix: cfg.RedisPrefix,
		ttl:    cfg.TTL,
		log:    log.With("component", "cache", "backend", "redis"),
	}, nil
}

// Get returns the value for key. Transport errors are logged and reported
// as a miss.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			r.log.Warn("cache get failed", "key", key, "error", err)
		}
		r.misses.Add(1)
		return nil, false
	}
	r.hits.Add(1)
	return val, true
}

// Put stores value under key with the configured TTL. Failures are logged
// and dropped.
func (r *Redis) Put(ctx context.Context, key string, value []byte) {
	if err := r.rdb.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		r.log.Warn("cache put failed", "key", key, "error", err)
	}
}

// Stats returns hit/miss counters. Entries counts keys under the prefix.
func (r *Redis) Stats(ctx context.Context) Stats {
	s := Stats{Hits: r.hits.Load(), Misses: r.misses.Load()}
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		s.Entries++
	}
	if err := iter.Err(); err != nil {
		r.log.Warn("cache scan failed", "error", err)
	}
	return s
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
