package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopoverlay/pkg/config"
)

func TestHitWindow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	res, err := client.HitWindow(ctx, "checkout:overlay-1", 2, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, WindowResult{Allowed: true, Count: 1}, res)
	require.Len(t, mock.expireCalls, 1)
	assert.Equal(t, expireCall{key: "shop:rate_limit:checkout:overlay-1", ttl: time.Minute}, mock.expireCalls[0])

	res, err = client.HitWindow(ctx, "checkout:overlay-1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Len(t, mock.expireCalls, 1, "expiry is only set on the first hit")

	mock.ttl = 12 * time.Second
	res, err = client.HitWindow(ctx, "checkout:overlay-1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(3), res.Count)
	assert.Equal(t, 12*time.Second, res.RetryAfter)
}

func TestHitWindowFallsBackToWindowWithoutTTL(t *testing.T) {
	mock := newMockCmdable()
	mock.ttl = -1
	client := &Client{store: mock}

	_, _ = client.HitWindow(context.Background(), "s", 0, time.Minute)
	res, err := client.HitWindow(context.Background(), "s", 0, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, res.RetryAfter)
}

func TestHitWindowIncrFailure(t *testing.T) {
	mock := newMockCmdable()
	mock.incrErr = errors.New("down")
	client := &Client{store: mock}

	_, err := client.HitWindow(context.Background(), "s", 1, time.Minute)
	assert.Error(t, err)
}

func TestIdempotencyLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}
	scope := "overlay-1|POST|/api/v1/checkout/purchase"

	_, ok, err := client.Load(ctx, scope, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	reserved, err := client.Reserve(ctx, scope, "abc", "pending", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, reserved)
	reserved, err = client.Reserve(ctx, scope, "abc", "pending", 10*time.Minute)
	require.NoError(t, err)
	assert.False(t, reserved, "second reservation must lose")

	require.NoError(t, client.Save(ctx, scope, "abc", "done", 10*time.Minute))
	value, ok, err := client.Load(ctx, scope, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "done", value)
	assert.Contains(t, mock.data, "shop:idempotency:"+scope+":abc")

	require.NoError(t, client.Release(ctx, scope, "abc"))
	_, ok, err = client.Load(ctx, scope, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUninitializedClientErrors(t *testing.T) {
	var nilClient *Client
	assert.ErrorIs(t, nilClient.Ping(context.Background()), errNotInitialized)
	assert.NoError(t, nilClient.Close())

	client := &Client{}
	_, _, err := client.Load(context.Background(), "s", "k")
	assert.ErrorIs(t, err, errNotInitialized)
	_, err = client.HitWindow(context.Background(), "s", 1, time.Second)
	assert.ErrorIs(t, err, errNotInitialized)
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{
		URL:         "redis://:secret@cache.local:6380/2",
		PoolSize:    7,
		DialTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "cache.local:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 3})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 3, opts.DB)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "shop:idempotency:scope:id", key(idempotencyPrefix, "scope", "id"))
	assert.Equal(t, "shop:idempotency:id", key(idempotencyPrefix, " ", "id"))
	assert.Equal(t, "shop", key())
}

type expireCall struct {
	key string
	ttl time.Duration
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	expireCalls []expireCall
	ttl         time.Duration
	incrErr     error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: map[string]string{}, incr: map[string]int64{}}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	if m.incrErr != nil {
		return redis.NewIntResult(0, m.incrErr)
	}
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) PTTL(context.Context, string) *redis.DurationCmd {
	return redis.NewDurationResult(m.ttl, nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
