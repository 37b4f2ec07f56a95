package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "idempotency"

// IdempotencyStore keeps replayable responses for settlement routes, keyed by
// caller scope and the client's Idempotency-Key.
type IdempotencyStore interface {
	// Reserve claims the key with a placeholder. It reports false when the
	// key already holds a placeholder or a response.
	Reserve(ctx context.Context, scope, id, placeholder string, ttl time.Duration) (bool, error)
	// Load returns the stored value; ok is false when nothing is stored.
	Load(ctx context.Context, scope, id string) (value string, ok bool, err error)
	Save(ctx context.Context, scope, id, value string, ttl time.Duration) error
	Release(ctx context.Context, scope, id string) error
}

var _ IdempotencyStore = (*Client)(nil)

func idempotencyKey(scope, id string) string {
	return key(idempotencyPrefix, scope, id)
}

func (c *Client) Reserve(ctx context.Context, scope, id, placeholder string, ttl time.Duration) (bool, error) {
	if err := c.ready(); err != nil {
		return false, err
	}
	return c.store.SetNX(ctx, idempotencyKey(scope, id), placeholder, ttl).Result()
}

func (c *Client) Load(ctx context.Context, scope, id string) (string, bool, error) {
	if err := c.ready(); err != nil {
		return "", false, err
	}
	value, err := c.store.Get(ctx, idempotencyKey(scope, id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *Client) Save(ctx context.Context, scope, id, value string, ttl time.Duration) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.store.Set(ctx, idempotencyKey(scope, id), value, ttl).Err()
}

func (c *Client) Release(ctx context.Context, scope, id string) error {
	if err := c.ready(); err != nil {
		return err
	}
	return c.store.Del(ctx, idempotencyKey(scope, id)).Err()
}
