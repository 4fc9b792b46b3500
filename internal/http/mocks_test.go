package http

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fifilen/foodapp/internal/cart"
	"github.com/fifilen/foodapp/internal/checkout"
	"github.com/fifilen/foodapp/internal/domain"
	"github.com/fifilen/foodapp/internal/journal"
)

type MockCheckout struct {
	Result   *checkout.Result
	Err      error
	Requests []checkout.Request
	// ClearOnSuccess mimics the orchestrator clearing the cart.
	ClearOnSuccess bool
}

func (m *MockCheckout) PlaceOrder(ctx context.Context, c checkout.Cart, req checkout.Request) (*checkout.Result, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.ClearOnSuccess {
		c.Clear()
		if pc, ok := c.(checkout.PersistentCart); ok {
			if err := pc.Persist(ctx); err != nil {
				return nil, err
			}
		}
	}
	return m.Result, nil
}

type MockPending struct {
	Entries []*journal.Entry
	Err     error
	UserID  string
}

func (m *MockPending) PendingPayments(ctx context.Context, userID string) ([]*journal.Entry, error) {
	m.UserID = userID
	return m.Entries, m.Err
}

type MockFavorites struct {
	Favorite bool
	IDs      []int64
	Err      error
	Tokens   []string
	Toggled  []int64
}

func (m *MockFavorites) Toggle(ctx context.Context, userID, token string, restaurantID int64) (bool, error) {
	m.Tokens = append(m.Tokens, token)
	m.Toggled = append(m.Toggled, restaurantID)
	return m.Favorite, m.Err
}

func (m *MockFavorites) List(ctx context.Context, userID, token string) ([]int64, error) {
	m.Tokens = append(m.Tokens, token)
	return m.IDs, m.Err
}

// MockRegistry hands out one store per user and counts saves.
type MockRegistry struct {
	mu        sync.Mutex
	stores    map[string]*cart.Store
	policy    cart.Policy
	CartErr   error
	Saves     int
	Persisted []domain.CartSnapshot
}

func NewMockRegistry(policy cart.Policy) *MockRegistry {
	return &MockRegistry{stores: make(map[string]*cart.Store), policy: policy}
}

func (m *MockRegistry) Cart(ctx context.Context, userID string) (*cart.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CartErr != nil {
		return nil, m.CartErr
	}
	store, ok := m.stores[userID]
	if !ok {
		store = cart.NewStore(m.policy)
		m.stores[userID] = store
	}
	return store, nil
}

func (m *MockRegistry) Save(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	return nil
}

func (m *MockRegistry) Persist(ctx context.Context, userID string, store *cart.Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persisted = append(m.Persisted, store.Snapshot())
	return nil
}

type MockRecorder struct {
	mu        sync.Mutex
	Mutations []string
	Routes    []string
}

func (m *MockRecorder) CartMutation(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Mutations = append(m.Mutations, operation+":"+result)
}

func (m *MockRecorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Routes = append(m.Routes, method+" "+route)
}

var errUpstreamDown = errors.New("dial tcp: connection refused")
