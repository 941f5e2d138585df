// Package cache stores computed facet panels between requests.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Cache is a key/value store for JSON-encodable values with expiry.
type Cache interface {
	// Get decodes the value stored under key into out. It reports false when
	// the key is missing or expired.
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Close() error
}

type entry struct {
	expires time.Time
	data    []byte
}

// Memory defaults.
const (
	DefaultMaxEntries = 4096
	sweepEvery        = 64
)

// Memory is an in-process Cache holding at most a fixed number of entries.
// Values are stored JSON encoded so callers never share memory with the cache.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	writes     int
	now        func() time.Time
}

// NewMemory creates an empty in-process cache with DefaultMaxEntries capacity.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry), maxEntries: DefaultMaxEntries, now: time.Now}
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string, out any) (bool, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && !m.now().Before(e.expires) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.data, out); err != nil {
		return false, fmt.Errorf("decoding cached %s: %w", key, err)
	}
	return true, nil
}

// Set implements Cache.
func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.writes++
	_, replacing := m.entries[key]
	full := !replacing && len(m.entries) >= m.maxEntries
	if full || m.writes%sweepEvery == 0 {
		m.sweep(now)
	}
	if !replacing && len(m.entries) >= m.maxEntries {
		m.evictSoonest()
	}
	m.entries[key] = entry{expires: now.Add(ttl), data: data}
	return nil
}

// sweep drops expired entries. Callers hold mu.
func (m *Memory) sweep(now time.Time) {
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}
}

// evictSoonest drops the entry closest to expiry. Callers hold mu.
func (m *Memory) evictSoonest() {
	var victim string
	var soonest time.Time
	for k, e := range m.entries {
		if victim == "" || e.expires.Before(soonest) {
			victim, soonest = k, e.expires
		}
	}
	delete(m.entries, victim)
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close implements Cache.
func (m *Memory) Close() error { return nil }
