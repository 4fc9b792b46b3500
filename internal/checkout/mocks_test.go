package checkout

import (
	"context"
	"errors"

	"github.com/fifilen/foodapp/internal/domain"
)

// MockOrderAPI implements OrderAPI for testing
type MockOrderAPI struct {
	Order      *domain.Order
	OrderErr   error
	Payment    *domain.Payment
	PaymentErr error

	OrderRequests   []*domain.CreateOrderRequest
	PaymentRequests []*domain.CreatePaymentRequest
	IdempotencyKeys []string
	Tokens          []string
}

func (m *MockOrderAPI) CreateOrder(_ context.Context, token, key string, req *domain.CreateOrderRequest) (*domain.Order, error) {
	m.OrderRequests = append(m.OrderRequests, req)
	m.IdempotencyKeys = append(m.IdempotencyKeys, key)
	m.Tokens = append(m.Tokens, token)
	if m.OrderErr != nil {
		return nil, m.OrderErr
	}
	return m.Order, nil
}

func (m *MockOrderAPI) CreatePayment(_ context.Context, token string, req *domain.CreatePaymentRequest) (*domain.Payment, error) {
	m.PaymentRequests = append(m.PaymentRequests, req)
	m.Tokens = append(m.Tokens, token)
	if m.PaymentErr != nil {
		return nil, m.PaymentErr
	}
	if m.Payment == nil {
		return &domain.Payment{ID: 1, OrderID: req.OrderID, PaymentMethod: req.PaymentMethod}, nil
	}
	return m.Payment, nil
}

func (m *MockOrderAPI) Calls() int {
	return len(m.OrderRequests) + len(m.PaymentRequests)
}

// MockCart implements Cart for testing
type MockCart struct {
	snapshot domain.CartSnapshot
	Cleared  bool
}

func (m *MockCart) Snapshot() domain.CartSnapshot {
	return m.snapshot
}

func (m *MockCart) Clear() {
	m.Cleared = true
}

// MockPersistentCart implements PersistentCart for testing. It captures what
// the journal held at the moment the cart was written through.
type MockPersistentCart struct {
	MockCart
	PersistErr       error
	Persisted        bool
	ClearedAtPersist bool
	StatusAtPersist  domain.CheckoutStatus
	CtxErrAtPersist  error
	journal          *MockJournal
}

func (m *MockPersistentCart) Persist(ctx context.Context) error {
	m.Persisted = true
	m.ClearedAtPersist = m.Cleared
	m.CtxErrAtPersist = ctx.Err()
	if m.journal != nil && len(m.journal.Statuses) > 0 {
		m.StatusAtPersist = m.journal.Statuses[len(m.journal.Statuses)-1]
	}
	return m.PersistErr
}

// MockJournal implements Journal for testing
type MockJournal struct {
	BeginErr   error
	Statuses   []domain.CheckoutStatus
	OrderID    int64
	OrderTotal float64
	Reason     string
	BeganWith  string
}

func (m *MockJournal) Begin(_ context.Context, _ string, _ domain.CartSnapshot, key string) (string, error) {
	if m.BeginErr != nil {
		return "", m.BeginErr
	}
	m.BeganWith = key
	m.Statuses = append(m.Statuses, domain.CheckoutStatusInitiated)
	return "checkout-1", nil
}

func (m *MockJournal) MarkOrderCreated(_ context.Context, _ string, orderID int64, total float64) error {
	m.OrderID = orderID
	m.OrderTotal = total
	m.Statuses = append(m.Statuses, domain.CheckoutStatusOrderCreated)
	return nil
}

func (m *MockJournal) MarkFailed(_ context.Context, _ string, status domain.CheckoutStatus, reason string) error {
	m.Reason = reason
	m.Statuses = append(m.Statuses, status)
	return nil
}

func (m *MockJournal) MarkCompleted(context.Context, string) error {
	m.Statuses = append(m.Statuses, domain.CheckoutStatusCompleted)
	return nil
}

type MockRecorder struct {
	Outcomes []string
}

func (m *MockRecorder) CheckoutOutcome(outcome string) {
	m.Outcomes = append(m.Outcomes, outcome)
}

var errCacheDown = errors.New("redis: connection refused")
