package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/anime-shed/cccd-inspector-go/pkg/models"
)

type entry struct {
	data    []byte
	expires time.Time
}

// Memory is an in-process cache. Values are stored serialized so callers never share
// a result with the cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) (*models.PipelineResult, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	var res models.PipelineResult
	if err := json.Unmarshal(e.data, &res); err != nil {
		return nil, false, err
	}
	return &res, true, nil
}

// Set stores res. A zero ttl never expires.
func (m *Memory) Set(_ context.Context, key string, res *models.PipelineResult, ttl time.Duration) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	e := entry{data: data}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
	return nil
}
