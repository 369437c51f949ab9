package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisEnvelope wraps a blob with its write time so freshness can be judged
// at read time without relying on Redis key expiry.
type redisEnvelope struct {
	Value    json.RawMessage `json:"v"`
	StoredAt time.Time       `json:"ts"`
}

// RedisStore implements Store using Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed blob store and verifies connectivity.
func NewRedisStore(opts ...RedisOption) (*RedisStore, error) {
	cfg := &RedisConfig{
		Host:         "localhost",
		Port:         6379,
		DB:           0,
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		MinIdleConns: 5,
		Prefix:       "regimepulse",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client, prefix: cfg.Prefix}, nil
}

// Client returns the underlying redis client.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) SetBlob(ctx context.Context, key string, value []byte) error {
	env := redisEnvelope{Value: value, StoredAt: time.Now()}
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.wrapKey(key), b, 0).Err()
}

func (s *RedisStore) GetBlob(ctx context.Context, key string) ([]byte, time.Time, bool, error) {
	b, err := s.client.Get(ctx, s.wrapKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, time.Time{}, false, nil
		}
		return nil, time.Time{}, false, err
	}

	var env redisEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, time.Time{}, false, err
	}
	return env.Value, env.StoredAt, true, nil
}

func (s *RedisStore) DeleteBlob(ctx context.Context, key string) error {
	return s.client.Unlink(ctx, s.wrapKey(key)).Err()
}

func (s *RedisStore) ClearAll(ctx context.Context) error {
	keys, err := s.client.Keys(ctx, s.prefix+":*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Unlink(ctx, keys...).Err()
}

func (s *RedisStore) wrapKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}
