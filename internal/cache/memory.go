package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	resp    CachedResponse
	expires time.Time
}

// Memory is the process-local cache used when no redis is configured.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) (CachedResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return CachedResponse{}, ErrMiss
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return CachedResponse{}, ErrMiss
	}
	return e.resp, nil
}

func (m *Memory) Set(_ context.Context, key string, resp CachedResponse, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{resp: resp, expires: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Flush(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
	return nil
}

func (m *Memory) Close() error { return nil }

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
