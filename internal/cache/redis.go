package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/GasparGW/chinfield-rag-demo/internal/retrieval"
)

// RedisSearchCache stores retrieval results in Redis with a TTL. A
// cache failure is never fatal: misses fall through to the index.
type RedisSearchCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisSearchCache(client *redis.Client, prefix string, ttl time.Duration) *RedisSearchCache {
	return &RedisSearchCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// ConnectRedis dials Redis and verifies the connection with retries.
func ConnectRedis(ctx context.Context, addr string, password string, maxRetries int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("Redis ping failed, retrying")
		time.Sleep(time.Duration(attempt) * time.Second)
	}

	return nil, fmt.Errorf("unable to connect to redis at %s: %w", addr, err)
}

func (c *RedisSearchCache) Get(ctx context.Context, query string, k int) ([]retrieval.ScoredDocument, bool) {
	data, err := c.client.Get(ctx, c.buildKey(query, k)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("Search cache read failed")
		}
		return nil, false
	}

	var docs []retrieval.ScoredDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		log.Warn().Err(err).Msg("Search cache entry corrupted, ignoring")
		return nil, false
	}

	return docs, true
}

func (c *RedisSearchCache) Set(ctx context.Context, query string, k int, docs []retrieval.ScoredDocument) {
	data, err := json.Marshal(docs)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to marshal search cache entry")
		return
	}

	if err := c.client.Set(ctx, c.buildKey(query, k), data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("Search cache write failed")
	}
}

func (c *RedisSearchCache) buildKey(query string, k int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%s%s:%d", c.prefix, hex.EncodeToString(sum[:]), k)
}
