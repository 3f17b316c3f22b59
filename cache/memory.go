package cache

import (
	"context"
	"sync"
	"time"

	"investimmo-bot/models"
)

type entry struct {
	ref       models.MarketReference
	expiresAt time.Time
}

// Memory is a process-local Cache.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (m *Memory) GetReference(_ context.Context, key string) (*models.MarketReference, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	ref := e.ref
	return &ref, true, nil
}

func (m *Memory) SetReference(_ context.Context, key string, ref *models.MarketReference, ttl time.Duration) error {
	if ref == nil || ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{ref: *ref, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
	return nil
}
