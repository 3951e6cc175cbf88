package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gradscout/gradscout/internal/match"
)

// Cache stores retrieval results keyed by a criteria fingerprint so repeated
// queries skip web search and scraping.
type Cache interface {
	Get(ctx context.Context, key string) ([]match.Candidate, bool, error)
	Set(ctx context.Context, key string, candidates []match.Candidate) error
}

// Fingerprint derives a stable cache key from parsed criteria. Criteria
// extraction is deterministic and its slices are sorted, so equal queries
// always map to the same key.
func Fingerprint(criteria match.ParsedCriteria) string {
	data, _ := json.Marshal(criteria)
	sum := sha1.Sum(data)
	return "retrieval:" + hex.EncodeToString(sum[:])
}

// RedisCache is a Redis-backed Cache with a fixed TTL per entry.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects a cache to Redis.
func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]match.Candidate, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var candidates []match.Candidate
	if err := json.Unmarshal([]byte(val), &candidates); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return candidates, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, candidates []match.Candidate) error {
	data, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Noop is a Cache that never hits. Used when Redis is not configured.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) ([]match.Candidate, bool, error) {
	return nil, false, nil
}

func (Noop) Set(ctx context.Context, key string, candidates []match.Candidate) error {
	return nil
}
