package cache

import (
	"context"
	"sync"

	"wheelstore/internal/models"
)

// MemoryCache is the in-process fallback used when REDIS_ADDR is not set.
type MemoryCache struct {
	mu    sync.RWMutex
	carts map[int][]models.CartItem
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{carts: make(map[int][]models.CartItem)}
}

func (m *MemoryCache) Get(_ context.Context, userID int) ([]models.CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items, ok := m.carts[userID]
	if !ok {
		return nil, ErrCacheMiss
	}
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out, nil
}

func (m *MemoryCache) Set(_ context.Context, userID int, items []models.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]models.CartItem, len(items))
	copy(stored, items)
	m.carts[userID] = stored
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}
