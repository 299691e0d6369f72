// FilePath: internal/throttle/throttle_redis.go
package throttle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "chainsense:throttle:"

// RedisStore keeps throttle records in Redis so several instances behind a
// load balancer share one window per source. Records expire with the window,
// which also bounds key growth. Cross-instance updates are last-writer-wins;
// the at-most-N guarantee is strict only within one instance.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, source string) (Record, bool, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+source).Result()
	if err == redis.Nil {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("redis get: %w", err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, false, fmt.Errorf("redis record decode: %w", err)
	}
	return rec, true, nil
}

func (s *RedisStore) Put(ctx context.Context, source string, rec Record, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis record encode: %w", err)
	}
	// TTL slightly past the window so an expired record is reset by the
	// limiter, not silently resurrected mid-window.
	if err := s.client.Set(ctx, redisKeyPrefix+source, raw, ttl+time.Second).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
