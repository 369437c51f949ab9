package cache

import (
	"context"
	"time"
)

// LayeredStore implements a two-level Store (L1: memory, L2: Redis).
// Reads hit memory first; writes go through to Redis before memory so the
// persistent layer is never behind the fast one.
type LayeredStore struct {
	mem   *MemoryStore
	redis Store
}

// NewLayeredStore creates a layered store over an existing Redis store.
func NewLayeredStore(redisStore *RedisStore) *LayeredStore {
	return &LayeredStore{
		mem:   NewMemoryStore(),
		redis: redisStore,
	}
}

func (s *LayeredStore) SetBlob(ctx context.Context, key string, value []byte) error {
	if err := s.redis.SetBlob(ctx, key, value); err != nil {
		return err
	}
	_ = s.mem.SetBlob(ctx, key, value)
	return nil
}

func (s *LayeredStore) GetBlob(ctx context.Context, key string) ([]byte, time.Time, bool, error) {
	if b, ts, ok, err := s.mem.GetBlob(ctx, key); err == nil && ok {
		return b, ts, true, nil
	}

	b, ts, ok, err := s.redis.GetBlob(ctx, key)
	if err != nil || !ok {
		return nil, time.Time{}, false, err
	}

	// Warm L1 for the next read, carrying the original write time so a
	// promoted entry ages from its write, not from the promotion.
	s.mem.setBlobAt(key, b, ts)
	return b, ts, true, nil
}

func (s *LayeredStore) DeleteBlob(ctx context.Context, key string) error {
	_ = s.mem.DeleteBlob(ctx, key)
	return s.redis.DeleteBlob(ctx, key)
}

func (s *LayeredStore) ClearAll(ctx context.Context) error {
	_ = s.mem.ClearAll(ctx)
	return s.redis.ClearAll(ctx)
}
