package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/RyanJHamby/stock-screener-long-hold/pkg/redis"
)

// RedisStore keeps cache entries in Redis under a key prefix. Entries
// carry a TTL well past any freshness horizon so Redis handles eventual
// eviction and the Policy handles staleness.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps an enabled Redis client. Callers check
// client.Enabled() before choosing this store.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    7 * 24 * time.Hour,
	}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + ":" + k
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, error) {
	data, err := s.client.Redis().Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return Entry{}, ErrMiss
		}
		return Entry{}, fmt.Errorf("redis get %s: %w", key, err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, ErrMiss
	}
	if e.SchemaVersion != SchemaVersion {
		return Entry{}, ErrMiss
	}
	return e, nil
}

func (s *RedisStore) Put(ctx context.Context, e Entry) error {
	e.SchemaVersion = SchemaVersion
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal cache entry %s: %w", e.Key, err)
	}
	if err := s.client.Redis().Set(ctx, s.key(e.Key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", e.Key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Redis().Del(ctx, s.key(key)).Err()
}
