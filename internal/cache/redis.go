package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fifilen/foodapp/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	// An idle cart expires after cartTTL plus up to maxJitter, so carts
	// saved together do not all expire in the same second.
	cartTTL   = 15 * time.Minute
	maxJitter = 5 * time.Minute
)

// RedisCache stores cart snapshots as JSON under cart:<user>.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	maxJitter time.Duration
}

type RedisOption func(*RedisCache)

// WithTTL overrides the idle expiry of a cart. jitter may be zero.
func WithTTL(ttl, jitter time.Duration) RedisOption {
	return func(r *RedisCache) {
		r.ttl = ttl
		r.maxJitter = jitter
	}
}

// NewRedisCache keeps carts in Redis so they survive restarts and are shared
// across replicas. Every Set refreshes the expiry.
func NewRedisCache(client *redis.Client, opts ...RedisOption) *RedisCache {
	r := &RedisCache{
		client:    client,
		ttl:       cartTTL,
		maxJitter: maxJitter,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r RedisCache) Get(ctx context.Context, userID string) (*domain.CartSnapshot, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var snapshot domain.CartSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &snapshot, nil
}

func (r RedisCache) Set(ctx context.Context, userID string, snapshot *domain.CartSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if err := r.client.Set(ctx, cacheKey(userID), data, r.expiry()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r RedisCache) expiry() time.Duration {
	if r.maxJitter <= 0 {
		return r.ttl
	}
	return r.ttl + time.Duration(rand.Int63n(int64(r.maxJitter)))
}

func cacheKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}
