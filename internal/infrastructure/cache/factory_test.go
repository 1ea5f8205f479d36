package cache

import (
	"context"
	"testing"
	"time"

	"github.com/farmadist/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// unreachableRedis points at a port nothing listens on
var unreachableRedis = config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

func TestFactory_RedisDisabled(t *testing.T) {
	store, err := NewIdempotencyStoreFactory(config.RedisConfig{}).CreateStore()
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
}

func TestFactory_FallsBackWhenRedisUnreachable(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	store, err := NewIdempotencyStoreFactory(unreachableRedis, WithLogger(zap.New(core))).CreateStore()
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	assert.Equal(t, 1, logs.Len())
}

func TestFactory_NoFallback(t *testing.T) {
	store, err := NewIdempotencyStoreFactory(unreachableRedis, WithInMemoryFallback(false)).CreateStore()

	require.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "redis required for idempotency")
}

func TestRedisIdempotencyStore_WrapsClientErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	store := NewRedisIdempotencyStoreWithClient(client, "")
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "k", time.Minute)
	assert.ErrorContains(t, err, "failed to mark idempotency key")

	_, err = store.IsProcessed(ctx, "k")
	assert.ErrorContains(t, err, "failed to check idempotency key")

	assert.ErrorContains(t, store.Release(ctx, "k"), "failed to release idempotency key")
	assert.Equal(t, DefaultKeyPrefix, store.keyPrefix)
}
