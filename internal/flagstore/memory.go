package flagstore

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-process Store. Used by tests and as the fallback when
// no durable backend is configured; flags then last one process lifetime.
type Memory struct {
	mu    sync.RWMutex
	flags map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{flags: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.flags[key]
	return v, ok
}

func (m *Memory) Set(_ context.Context, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[key] = value
}

func (m *Memory) Remove(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flags, key)
}

func (m *Memory) List(_ context.Context, prefix string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string)
	for k, v := range m.flags {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out
}
