package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fifilen/foodapp/internal/cache"
	"github.com/fifilen/foodapp/internal/cart"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Registry owns one cart.Store per user. Stores are created lazily and,
// when a cache is configured, restored from the last saved snapshot.
type Registry struct {
	policy cart.Policy
	cache  cache.CartCache
	logger *zap.Logger

	mu     sync.RWMutex
	stores map[string]*cart.Store
	sfg    singleflight.Group // collapses concurrent first access per user
}

func NewRegistry(policy cart.Policy, c cache.CartCache, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		policy: policy,
		cache:  c,
		logger: logger,
		stores: make(map[string]*cart.Store),
	}
}

func (r *Registry) Cart(ctx context.Context, userID string) (*cart.Store, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	if store, ok := r.lookup(userID); ok {
		return store, nil
	}

	v, err, _ := r.sfg.Do(userID, func() (interface{}, error) {
		if store, ok := r.lookup(userID); ok {
			return store, nil
		}

		store := cart.NewStore(r.policy)
		r.restore(ctx, userID, store)

		r.mu.Lock()
		r.stores[userID] = store
		r.mu.Unlock()
		return store, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*cart.Store), nil
}

// Save writes the user's current cart through to the cache. A missing or
// empty cart removes the cache entry instead, so a cart cleared and then
// evicted is not restored from a stale snapshot.
func (r *Registry) Save(ctx context.Context, userID string) error {
	if r.cache == nil {
		return nil
	}
	store, ok := r.lookup(userID)
	if !ok {
		if err := r.cache.Delete(ctx, userID); err != nil {
			return fmt.Errorf("delete cached cart: %w", err)
		}
		return nil
	}
	return r.Persist(ctx, userID, store)
}

// Persist writes store through to the cache under userID, whether or not it
// is still the registered store for that user.
func (r *Registry) Persist(ctx context.Context, userID string, store *cart.Store) error {
	if r.cache == nil {
		return nil
	}
	snapshot := store.Snapshot()
	if snapshot.IsEmpty() {
		if err := r.cache.Delete(ctx, userID); err != nil {
			return fmt.Errorf("delete cached cart: %w", err)
		}
		return nil
	}
	if err := r.cache.Set(ctx, userID, &snapshot); err != nil {
		return fmt.Errorf("cache cart: %w", err)
	}
	return nil
}

func (r *Registry) Forget(ctx context.Context, userID string) error {
	r.mu.Lock()
	delete(r.stores, userID)
	r.mu.Unlock()

	if r.cache == nil {
		return nil
	}
	if err := r.cache.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete cached cart: %w", err)
	}
	return nil
}

// Evict drops the in-memory store only. The next Cart call restores from the
// cache, which another replica may have updated.
func (r *Registry) Evict(userID string) {
	r.mu.Lock()
	delete(r.stores, userID)
	r.mu.Unlock()
}

func (r *Registry) lookup(userID string) (*cart.Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	store, ok := r.stores[userID]
	return store, ok
}

func (r *Registry) restore(ctx context.Context, userID string, store *cart.Store) {
	if r.cache == nil {
		return
	}
	snapshot, err := r.cache.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.logger.Warn("cache get error, starting with empty cart", zap.String("user_id", userID), zap.Error(err))
		}
		return
	}
	store.Restore(*snapshot)
	r.logger.Debug("cart restored from cache",
		zap.String("user_id", userID),
		zap.Int("item_count", store.ItemCount()))
}
