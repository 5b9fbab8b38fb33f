package infrastructure

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implémente Cache sur Redis pour partager les rapports entre instances
type RedisCache struct {
	client    *redis.Client
	namespace string
	timeout   time.Duration
}

// NewRedisCache crée un cache adossé à Redis
func NewRedisCache(addr, password string, db int, namespace string) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisCacheFromClient(rdb, namespace)
}

// NewRedisCacheFromClient réutilise un client existant
func NewRedisCacheFromClient(client *redis.Client, namespace string) *RedisCache {
	return &RedisCache{
		client:    client,
		namespace: namespace,
		timeout:   2 * time.Second,
	}
}

// Ping vérifie la connexion
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close ferme le client
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(k string) string {
	if c.namespace == "" {
		return k
	}
	return c.namespace + ":" + k
}

func (c *RedisCache) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

// Get récupère une valeur; une erreur Redis est traitée comme un miss
func (c *RedisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := c.ctx()
	defer cancel()

	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("redis cache get failed", "key", key, "err", err)
		}
		return nil, false
	}
	return val, true
}

// Set ajoute ou met à jour une valeur avec TTL
func (c *RedisCache) Set(key string, value []byte, ttl time.Duration) {
	ctx, cancel := c.ctx()
	defer cancel()

	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		slog.Warn("redis cache set failed", "key", key, "err", err)
	}
}

// Delete supprime une entrée
func (c *RedisCache) Delete(key string) {
	ctx, cancel := c.ctx()
	defer cancel()

	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		slog.Warn("redis cache delete failed", "key", key, "err", err)
	}
}

// DeletePrefix supprime les clés du préfixe via SCAN (jamais KEYS)
func (c *RedisCache) DeletePrefix(prefix string) int {
	return c.deleteMatching(c.key(prefix) + "*")
}

// Clear supprime toutes les clés du namespace
func (c *RedisCache) Clear() {
	if c.namespace == "" {
		slog.Warn("redis cache clear skipped: no namespace configured")
		return
	}
	c.deleteMatching(c.namespace + ":*")
}

// Has vérifie si une clé existe
func (c *RedisCache) Has(key string) bool {
	ctx, cancel := c.ctx()
	defer cancel()

	n, err := c.client.Exists(ctx, c.key(key)).Result()
	return err == nil && n > 0
}

func (c *RedisCache) deleteMatching(pattern string) int {
	ctx, cancel := c.ctx()
	defer cancel()

	removed := 0
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("redis cache scan failed", "pattern", pattern, "err", err)
			return removed
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				slog.Warn("redis cache delete failed", "pattern", pattern, "err", err)
				return removed
			}
			removed += int(n)
		}
		cursor = next
		if cursor == 0 {
			return removed
		}
	}
}
