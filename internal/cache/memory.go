// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry struct {
	storedAt time.Time
	value    []byte
}

// Memory is a fixed-capacity in-process cache. The least recently used
// entry is evicted when capacity is reached; stale entries are not purged
// on a timer, only reported absent by Get.
type Memory struct {
	entries *lru.Cache[string, entry]
	ttl     time.Duration
	now     func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemory creates a cache holding at most capacity entries, each fresh
// for ttl.
func NewMemory(capacity int, ttl time.Duration) (*Memory, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %v", ttl)
	}
	entries, err := lru.New[string, entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("creating lru: %w", err)
	}
	return &Memory{entries: entries, ttl: ttl, now: time.Now}, nil
}

// SetClock replaces the time source. Tests use it to step past the TTL.
func (m *Memory) SetClock(now func() time.Time) {
	m.now = now
}

// Get returns the value for key if it was stored less than ttl ago.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	e, ok := m.entries.Get(key)
	if !ok || m.now().Sub(e.storedAt) >= m.ttl {
		m.misses.Add(1)
		return nil, false
	}
	m.hits.Add(1)
	return e.value, true
}

// Put stores a copy of value under key, replacing any previous entry.
func (m *Memory) Put(_ context.Context, key string, value []byte) {
	v := make([]byte, len(value))
	copy(v, value)
	m.entries.Add(key, entry{storedAt: m.now(), value: v})
}

// Stats returns current counters.
func (m *Memory) Stats() Stats {
	return Stats{
		Entries: m.entries.Len(),
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
	}
}
