package cache

import (
	"context"
	"errors"

	"github.com/fifilen/foodapp/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.CartSnapshot, error)
	Set(ctx context.Context, userID string, snapshot *domain.CartSnapshot) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
