package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisOrderCache keeps order views in Redis under order:<id>.
type RedisOrderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a client from cfg and checks connectivity.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// NewRedisOrderCache creates a cache whose entries expire after ttl.
func NewRedisOrderCache(client *redis.Client, ttl time.Duration) *RedisOrderCache {
	return &RedisOrderCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisOrderCache) Get(ctx context.Context, id uuid.UUID) (*model.OrderDetails, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var order model.OrderDetails
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("unmarshal order failed: %w", err)
	}

	return &order, nil
}

func (c *RedisOrderCache) Set(ctx context.Context, order *model.OrderDetails) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order failed: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(order.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *RedisOrderCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("order:%s", id)
}
