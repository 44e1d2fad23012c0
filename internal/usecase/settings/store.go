package settings

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/envisage-infotech/hr-interview-desk/internal/infrastructure/cache"
)

// redisStore persists settings in Redis without expiry.
type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed settings store.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// memoryStore adapts the in-process cache to the Store interface, used
// when Redis is disabled. Settings then survive only for the process
// lifetime.
type memoryStore struct {
	store *cache.MemoryStore
}

// NewMemoryStore creates an in-process settings store.
func NewMemoryStore() Store {
	return &memoryStore{store: cache.NewMemoryStore()}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	val, ok := s.store.Get(key)
	return val, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.store.Set(key, value, 0)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.store.Delete(key)
	return nil
}
