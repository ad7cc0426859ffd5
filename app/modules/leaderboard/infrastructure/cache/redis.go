// Package leaderboardcache stores ranked boards in redis.
package leaderboardcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	leaderboarddomain "github.com/RelicDragon/bandeja-sub007/app/modules/leaderboard/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "leaderboard:"

// NewClient creates a redis client for the leaderboard cache.
func NewClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     20,
		MinIdleConns: 2,
		PoolTimeout:  30 * time.Second,
	})
}

// RedisCache keeps ranked boards as JSON values that expire after ttl.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached board for key; ok is false on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*leaderboarddomain.RankedBoard, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("leaderboardcache.Get: %w", err)
	}

	board := new(leaderboarddomain.RankedBoard)
	if err := json.Unmarshal(raw, board); err != nil {
		return nil, false, fmt.Errorf("leaderboardcache.Get: decode %s: %w", key, err)
	}
	return board, true, nil
}

// Set stores board under key for the configured ttl.
func (c *RedisCache) Set(ctx context.Context, key string, board *leaderboarddomain.RankedBoard) error {
	raw, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("leaderboardcache.Set: encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("leaderboardcache.Set: %w", err)
	}
	return nil
}

// Invalidate drops every cached board.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("leaderboardcache.Invalidate: scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("leaderboardcache.Invalidate: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
