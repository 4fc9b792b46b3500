package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/fifilen/foodapp/internal/cache"
	"github.com/fifilen/foodapp/internal/domain"
)

type MockCache struct {
	mu      sync.Mutex
	data    map[string]domain.CartSnapshot
	GetErr  error
	gets    atomic.Int32
	Deleted []string
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string]domain.CartSnapshot)}
}

func (m *MockCache) Get(ctx context.Context, userID string) (*domain.CartSnapshot, error) {
	m.gets.Add(1)
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.data[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &snap, nil
}

func (m *MockCache) Set(ctx context.Context, userID string, snapshot *domain.CartSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[userID] = *snapshot
	return nil
}

func (m *MockCache) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, userID)
	m.Deleted = append(m.Deleted, userID)
	return nil
}

func (m *MockCache) stored(userID string) (domain.CartSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.data[userID]
	return snap, ok
}
