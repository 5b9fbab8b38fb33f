package app

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragreport/internal/config"
	sharedinfra "ragreport/internal/shared/infrastructure"
)

func TestClearReportCache_MemoryBackend(t *testing.T) {
	cleared, err := ClearReportCache(context.Background(), config.CacheConfig{
		Backend: config.CacheBackendMemory,
		TTL:     time.Minute,
	})
	require.NoError(t, err)
	assert.False(t, cleared, "un cache mémoire appartient au processus serveur")
}

func TestClearReportCache_RedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cleared, err := ClearReportCache(ctx, config.CacheConfig{
		Backend:   config.CacheBackendRedis,
		RedisAddr: "127.0.0.1:1",
	})
	require.Error(t, err)
	assert.False(t, cleared)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

// TestClearReportCache_RedisIntegration nécessite un Redis; ignoré si indisponible
func TestClearReportCache_RedisIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	cfg := config.CacheConfig{Backend: config.CacheBackendRedis, RedisAddr: addr, RedisPassword: os.Getenv("REDIS_PASSWORD")}

	server := sharedinfra.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cacheNamespace)
	defer server.Close()
	if err := server.Ping(context.Background()); err != nil {
		t.Skip("Skipping Redis integration test: redis not available")
	}

	server.Set("rag:2024:6:status:*:*:*", []byte("payload"), time.Minute)
	server.Set("rag:2023:1:summary:*:*:*", []byte("payload"), time.Minute)
	server.Set("other:key", []byte("payload"), time.Minute)
	defer server.Delete("other:key")

	cleared, err := ClearReportCache(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.False(t, server.Has("rag:2024:6:status:*:*:*"))
	assert.False(t, server.Has("rag:2023:1:summary:*:*:*"))
	assert.True(t, server.Has("other:key"))
}
