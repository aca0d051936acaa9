package cache

import (
	"context"
	"errors"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// ErrCacheMiss is returned when an order is not cached.
var ErrCacheMiss = errors.New("cache miss")

// OrderCache stores order views keyed by order ID.
type OrderCache interface {
	Get(ctx context.Context, id uuid.UUID) (*model.OrderDetails, error)
	Set(ctx context.Context, order *model.OrderDetails) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// NopCache is used when Redis is disabled. Every lookup misses.
type NopCache struct{}

func (NopCache) Get(context.Context, uuid.UUID) (*model.OrderDetails, error) {
	return nil, ErrCacheMiss
}

func (NopCache) Set(context.Context, *model.OrderDetails) error { return nil }

func (NopCache) Delete(context.Context, uuid.UUID) error { return nil }
