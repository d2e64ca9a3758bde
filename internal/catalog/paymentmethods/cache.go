package paymentmethods

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "paymentmethods:version"

// Cache wraps Redis based caching of the active method set with a global
// version. Any mutation bumps the version, so stale keys are abandoned
// rather than deleted one by one.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client disables caching
// and every read falls through to the loader.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

func (c *Cache) buildKey(ctx context.Context, businessID uuid.UUID) (string, error) {
	ver, err := c.version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("paymentmethods:active:%s:%d", businessID, ver), nil
}

// FetchActive loads the active method set from cache or populates it using
// the loader.
func (c *Cache) FetchActive(ctx context.Context, businessID uuid.UUID, loader func(context.Context) ([]PaymentMethod, error)) ([]PaymentMethod, error) {
	if loader == nil {
		return nil, errors.New("paymentmethods: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}

	key, err := c.buildKey(ctx, businessID)
	if err != nil {
		return nil, err
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var methods []PaymentMethod
		if err := json.Unmarshal(payload, &methods); err == nil {
			return methods, nil
		}
	} else if err != redis.Nil {
		return nil, err
	}

	methods, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(methods)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return nil, err
	}
	return methods, nil
}

// Bump invalidates cached method sets by incrementing the global version.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}
