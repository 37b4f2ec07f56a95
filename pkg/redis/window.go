package redis

import (
	"context"
	"time"
)

const rateLimitPrefix = "rate_limit"

// WindowResult is the state of one caller's fixed window after a hit.
type WindowResult struct {
	Allowed bool
	Count   int64
	// RetryAfter is how long until the window resets. It is only filled
	// when the hit was refused.
	RetryAfter time.Duration
}

// HitWindow counts one request against scope's fixed window. The window
// starts with the first hit and expires after window.
func (c *Client) HitWindow(ctx context.Context, scope string, limit int64, window time.Duration) (WindowResult, error) {
	if err := c.ready(); err != nil {
		return WindowResult{}, err
	}
	k := key(rateLimitPrefix, scope)

	count, err := c.store.Incr(ctx, k).Result()
	if err != nil {
		return WindowResult{}, err
	}
	if count == 1 && window > 0 {
		if err := c.store.Expire(ctx, k, window).Err(); err != nil {
			return WindowResult{Allowed: true, Count: count}, err
		}
	}

	res := WindowResult{Allowed: count <= limit, Count: count}
	if res.Allowed {
		return res, nil
	}
	res.RetryAfter = window
	if ttl, err := c.store.PTTL(ctx, k).Result(); err == nil && ttl > 0 {
		res.RetryAfter = ttl
	}
	return res, nil
}
