package infrastructure

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRedisCache_Integration nécessite un Redis; ignoré si indisponible
func TestRedisCache_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	cache := NewRedisCache(addr, os.Getenv("REDIS_PASSWORD"), 0, "ragreport-test")
	defer cache.Close()

	if err := cache.Ping(context.Background()); err != nil {
		t.Skip("Skipping Redis integration test: redis not available")
	}
	cache.Clear()

	cache.Set("rag:2024:6:status:all", []byte("payload"), time.Minute)
	cache.Set("rag:2024:6:summary:all", []byte("payload"), time.Minute)
	cache.Set("rag:2024:7:status:all", []byte("payload"), time.Minute)

	val, found := cache.Get("rag:2024:6:status:all")
	require.True(t, found)
	assert.Equal(t, "payload", string(val))

	assert.Equal(t, 2, cache.DeletePrefix("rag:2024:6:"))
	assert.False(t, cache.Has("rag:2024:6:status:all"))
	assert.True(t, cache.Has("rag:2024:7:status:all"))

	cache.Delete("rag:2024:7:status:all")
	_, found = cache.Get("rag:2024:7:status:all")
	assert.False(t, found)
}
