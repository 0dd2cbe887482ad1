package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-assistant/internal/infrastructure/config"
	"recipe-assistant/internal/pkg/common"
)

func memoryConfig(maxSize int, ttl time.Duration) *config.Config {
	cfg := config.Default()
	cfg.Cache.Enabled = true
	cfg.Cache.Backend = BackendMemory
	cfg.Cache.MaxSize = maxSize
	cfg.Cache.TTL = ttl
	cfg.Cache.CleanupInterval = 0
	return cfg
}

func TestManagerGetSet(t *testing.T) {
	m := NewManager(memoryConfig(10, time.Minute))
	defer m.Close()
	ctx := context.Background()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "k", "v"))
	val, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
}

func TestManagerExpiry(t *testing.T) {
	m := NewManager(memoryConfig(10, time.Millisecond))
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v"))
	time.Sleep(5 * time.Millisecond)
	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	m := NewManager(memoryConfig(2, time.Minute))
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "b", "2"))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", "3"))
	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestNew(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Enabled = false
	c, err := New(cfg)
	require.NoError(t, err)
	assert.Nil(t, c)

	cfg = memoryConfig(5, time.Minute)
	c, err = New(cfg)
	require.NoError(t, err)
	_, ok := c.(*CacheManager)
	assert.True(t, ok)
	require.NoError(t, c.Close())

	cfg.Cache.Backend = "memcached"
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("analyze", "борщ"), Key("analyze", "борщ"))
	assert.NotEqual(t, Key("analyze", "борщ"), Key("smalltalk", "борщ"))
	assert.NotEqual(t, Key("analyze", "a", "bc"), Key("analyze", "ab", "c"))
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	cfg := config.Default()
	cfg.Redis.Addr = addr
	cfg.Redis.Prefix = "recipe-assistant-test:"
	cfg.Cache.TTL = time.Minute

	r, err := NewRedis(cfg)
	require.NoError(t, err)
	defer r.Close()
	ctx := context.Background()

	_, err = r.Get(ctx, "missing-"+time.Now().String())
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, r.Set(ctx, "k", "значение"))
	val, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "значение", val)
}
