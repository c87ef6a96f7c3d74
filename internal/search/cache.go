package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"
)

// VectorCache stores embeddings keyed by input text so repeated queries skip
// the embedding call. A miss is never an error.
type VectorCache interface {
	Get(ctx context.Context, text string) ([]float64, bool)
	Set(ctx context.Context, text string, vec []float64)
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// --- Redis-backed cache -----------------------------------------------------

type redisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) VectorCache {
	return &redisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, text string) ([]float64, bool) {
	data, err := c.client.Get(ctx, c.prefix+cacheKey(text)).Bytes()
	if err != nil {
		return nil, false
	}
	var vec []float64
	if err := json.Unmarshal(data, &vec); err != nil {
		slog.WarnContext(ctx, "corrupt cached embedding dropped", "error", err)
		return nil, false
	}
	return vec, true
}

func (c *redisCache) Set(ctx context.Context, text string, vec []float64) {
	data, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.prefix+cacheKey(text), data, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "embedding cache write failed", "error", err)
	}
}

// --- In-process LRU fallback ------------------------------------------------

type memoryCache struct {
	cache *lru.Cache
}

// NewMemoryCache is the fallback when no redis is configured.
func NewMemoryCache(size int) (VectorCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &memoryCache{cache: cache}, nil
}

func (c *memoryCache) Get(_ context.Context, text string) ([]float64, bool) {
	if v, ok := c.cache.Get(cacheKey(text)); ok {
		if vec, ok := v.([]float64); ok {
			return vec, true
		}
	}
	return nil, false
}

func (c *memoryCache) Set(_ context.Context, text string, vec []float64) {
	c.cache.Add(cacheKey(text), vec)
}
